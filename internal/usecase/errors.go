package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類。handlerがHTTPステータスに変換する。
type ErrorKind string

const (
	//入力が不正（呼び出し側の誤り。副作用なし）
	KindValidation ErrorKind = "validation"
	//一意制約の衝突（email/username/sku/order_numberなど）
	KindConflict ErrorKind = "conflict"
	//不正なステータス遷移（未払い返金など）
	KindState ErrorKind = "state"
	//リソース起因（在庫不足・非公開商品・対象なし）
	KindResource ErrorKind = "resource"
	//一時的な失敗（リトライ上限後に表面化）
	KindTransient ErrorKind = "transient"
	//対象が存在しない
	KindNotFound ErrorKind = "not_found"
	//認証されていない
	KindUnauthorized ErrorKind = "unauthorized"
	//権限がない
	KindForbidden ErrorKind = "forbidden"
	//内部エラー（DB障害など）
	KindInternal ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind
	Message string

	//在庫不足など商品起因のときに入る詳細
	Details []ProductIssue
}

// 商品ごとの失敗理由（在庫不足は不足数も返す）
type ProductIssue struct {
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
	Shortfall int64  `json:"shortfall,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindState:
		return http.StatusConflict
	case KindResource:
		return http.StatusUnprocessableEntity
	case KindTransient:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func NewError(kind ErrorKind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func NewErrorf(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// よく使うものはヘルパーにしておく
func errValidation(msg string) error   { return NewError(KindValidation, msg) }
func errNotFound(msg string) error     { return NewError(KindNotFound, msg) }
func errUnauthorized(msg string) error { return NewError(KindUnauthorized, msg) }
func errInternal(msg string) error     { return NewError(KindInternal, msg) }

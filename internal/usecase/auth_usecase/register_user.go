package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力。プロフィールも同時に作る。
type RegisterUserInput struct {
	Email     string
	Username  string
	Password  string
	Role      model.Role //空ならcustomer
	FirstName string
	LastName  string
	Phone     string
	Address   model.Address

	//従業員ロールのときだけ使う
	HireDate *time.Time
	Salary   int64
}

type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMissingName        = errors.New("first and last name are required")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")

	// 競合
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。
// User行とプロフィール行（CustomerまたはEmployee）を1トランザクションで作る。
// どちらかが失敗したら両方ロールバックされ、片割れは残らない。
type RegisterUserUsecase struct {
	tx     repository.TransactionManager
	hasher PasswordHasher
	clock  Clock
}

// DI
func NewRegisterUserUsecase(
	tx repository.TransactionManager,
	hasher PasswordHasher,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		tx:     tx,
		hasher: hasher,
		clock:  clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	// emailの形式チェック
	if !isValidEmailFormat(in.Email) {
		return out, ErrInvalidEmailFormat
	}

	// username：3〜50文字の英数とアンダースコア
	if !isValidUsername(in.Username) {
		return out, ErrInvalidUsername
	}

	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if !role.IsValid() {
		return out, ErrInvalidRole
	}

	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return out, ErrMissingName
	}

	// password の長さチェック（最小12文字）
	if len(in.Password) < 12 {
		return out, ErrPasswordTooShort
	}

	// よくある弱いパスワードの拒否
	if isWeakPassword(in.Password) {
		return out, ErrWeakPassword
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hashed,
		Role:         role,
		TokenVersion: 0,
		IsActive:     true,
		LastLoginAt:  nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		// 重複チェック（最終的な担保は一意制約）
		if existing, err := r.Users().FindByEmail(ctx, user.Email); err == nil && existing != nil {
			return ErrEmailAlreadyExists
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing, err := r.Users().FindByUsername(ctx, user.Username); err == nil && existing != nil {
			return ErrUsernameAlreadyExists
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := r.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				//emailとusernameのどちらの一意制約に当たったか引き直す
				if existing, ferr := r.Users().FindByUsername(ctx, user.Username); ferr == nil && existing != nil {
					return ErrUsernameAlreadyExists
				}
				return ErrEmailAlreadyExists
			}
			return err
		}

		//ロールに応じたプロフィールを同じトランザクションで作る
		if role == model.RoleCustomer {
			customer := &model.Customer{
				UserID:    user.ID,
				FirstName: strings.TrimSpace(in.FirstName),
				LastName:  strings.TrimSpace(in.LastName),
				Phone:     strings.TrimSpace(in.Phone),
				Address:   in.Address,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return r.Customers().Create(ctx, customer)
		}

		hireDate := now
		if in.HireDate != nil {
			hireDate = *in.HireDate
		}
		employee := &model.Employee{
			UserID:    user.ID,
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Phone:     strings.TrimSpace(in.Phone),
			HireDate:  hireDate,
			Salary:    in.Salary,
			Address:   in.Address,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return r.Employees().Create(ctx, employee)
	})
	if err != nil {
		return out, err
	}

	// 返すときは password を空にして漏洩防止
	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	return out, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}

func isValidUsername(username string) bool {
	trimmed := strings.TrimSpace(username)
	if len(trimmed) < 3 || len(trimmed) > 50 {
		return false
	}
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// パスワードのよくある弱いパスワード
func isWeakPassword(password string) bool {
	normalized := strings.ToLower(strings.TrimSpace(password))

	weak := map[string]struct{}{
		"password":     {},
		"password123":  {},
		"123456789012": {},
		"1234567890":   {},
		"12345678":     {},
		"qwerty":       {},
		"qwertyuiop":   {},
		"letmein":      {},
		"admin":        {},
		"admin123":     {},
	}

	_, ok := weak[normalized]
	return ok
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

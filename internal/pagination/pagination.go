package pagination

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 一覧レスポンスに付けるページ情報
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Offset     int   `json:"-"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Normalize はpage/page_sizeを正規化してPageInfoを返す。
//   - page<=0 は 1
//   - page_size<=0 は DefaultPageSize、MaxPageSize超は黙って上限に丸める
//   - total_pagesは切り上げ。0件でも表示上1ページ扱い
//   - total_pagesを超えるpageはエラーにしない（空ページ＋正しいメタデータ）
func Normalize(page int, pageSize int, totalItems int64) PageInfo {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Offset:     (page - 1) * pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

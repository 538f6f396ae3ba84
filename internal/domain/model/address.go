package model

// 住所の値オブジェクト。
// Customerの登録住所と、Orderの配送先スナップショットの両方で使う。
type Address struct {
	//番地など
	Line1 string `gorm:"type:varchar(255)" json:"line1"`

	//建物名など
	Line2 string `gorm:"type:varchar(255)" json:"line2"`

	//市区町村
	City string `gorm:"type:varchar(100)" json:"city"`

	//州・都道府県
	State string `gorm:"type:varchar(100)" json:"state"`

	//郵便番号
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`

	//国
	Country string `gorm:"type:varchar(100)" json:"country"`
}

// 配送先として必須項目が揃っているか
func (a Address) IsComplete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && a.PostalCode != "" && a.Country != ""
}

package repository

import "errors"

// 見つかりませんを統一
var ErrNotFound = errors.New("not found")

// 一意制約違反（email/username/sku/order_numberなど）を統一
var ErrConflict = errors.New("conflict")

package ids

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UUIDベースのID生成（リフレッシュトークンIDなど）
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// 実時間のClock
type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// 注文番号の採番。ORD-YYYYMMDD-XXXXXXXX 形式。
// ランダム部はUUIDの先頭8桁。一意性の最終担保はDBの一意制約。
type OrderNumberGenerator struct {
	clock interface{ Now() time.Time }
}

func NewOrderNumberGenerator(clock interface{ Now() time.Time }) *OrderNumberGenerator {
	return &OrderNumberGenerator{clock: clock}
}

func (g *OrderNumberGenerator) Generate() string {
	date := g.clock.Now().Format("20060102")
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", date, random)
}

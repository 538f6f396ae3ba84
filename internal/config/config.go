package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // DSN（あればPOSTGRES_*より優先）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	RedisURL string // 商品キャッシュ用（空ならキャッシュ無効）

	JWTSecret  string        // JWT署名シークレット
	AccessTTL  time.Duration // アクセストークン有効期間
	RefreshTTL time.Duration // リフレッシュトークン有効期間

	BcryptCost int // パスワードハッシュのコスト

	TaxRatePercent int64 // 税率（%）
	ShippingFlat   int64 // 送料一律（セント）

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）

	RateLimitPerSecond float64 // 1クライアントあたりの秒間リクエスト上限
}

// Loadは環境変数から設定を読む。
// DBとJWT以外はデフォルトありにして、ローカル起動を楽にする。
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "shop"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: getenv("FE_URL", "http://localhost:3000"),
	}

	var err error
	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}

	accessMin, err := atoiDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.AccessTTL = time.Duration(accessMin) * time.Minute

	refreshDays, err := atoiDefault("REFRESH_TOKEN_TTL_DAYS", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTTL = time.Duration(refreshDays) * 24 * time.Hour

	if cfg.BcryptCost, err = atoiDefault("BCRYPT_COST", 0); err != nil {
		return Config{}, err
	}

	taxRate, err := atoiDefault("TAX_RATE_PERCENT", 8)
	if err != nil {
		return Config{}, err
	}
	cfg.TaxRatePercent = int64(taxRate)

	shipping, err := atoiDefault("SHIPPING_FLAT", 1000)
	if err != nil {
		return Config{}, err
	}
	cfg.ShippingFlat = int64(shipping)

	rps, err := atoiDefault("RATE_LIMIT_PER_SECOND", 20)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitPerSecond = float64(rps)

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// internal/infra/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string
	GCPCreds                 string

	// カタログ画像のアップロード先（空なら画像アップロードは無効）
	GCSBucket string

	// Identity Toolkit の web API key を置く Secret Manager の secretId。
	// 空なら IDENTITY_API_KEY 環境変数に直接入れる（ローカル開発用）。
	IdentityAPIKeySecret string
	IdentityAPIKey       string

	// SendGrid（注文確認メール）。secretId 優先、env fallback。
	SendGridKeySecret string
	SendGridAPIKey    string
	SendGridFrom      string

	// フロントのオリジン（CORS）
	AllowedOrigin string

	// ブラウジングセッションの idle TTL
	SessionTTL time.Duration
}

// Load は .env（あれば）と環境変数を読み込み Config を返します。
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using environment variables")
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		IdentityAPIKeySecret: os.Getenv("IDENTITY_API_KEY_SECRET"),
		IdentityAPIKey:       os.Getenv("IDENTITY_API_KEY"),

		SendGridKeySecret: os.Getenv("SENDGRID_KEY_SECRET"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:      os.Getenv("SENDGRID_FROM"),

		AllowedOrigin: getenvDefault("ALLOWED_ORIGIN", "*"),

		SessionTTL: getenvDuration("SESSION_TTL_MINUTES", 30*time.Minute),
	}

	return cfg
}

// GetFirestoreProjectID は Firestore/GCP プロジェクト ID を返します。
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// Firebase 用の ProjectID を返すヘルパー。
func (c *Config) GetFirebaseProjectID() string {
	if c.FirebaseProjectID != "" {
		return c.FirebaseProjectID
	}
	return c.FirestoreProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] WARN: invalid %s=%q, using default", key, v)
		return def
	}
	return time.Duration(n) * time.Minute
}

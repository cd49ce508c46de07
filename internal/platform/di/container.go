// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/in/http/session"
	fsrepo "storefront/internal/adapters/out/firestore"
	"storefront/internal/adapters/out/gcs"
	identityadapter "storefront/internal/adapters/out/identity"
	"storefront/internal/adapters/out/localslot"
	"storefront/internal/adapters/out/mail"
	usecase "storefront/internal/application/usecase"
	authuc "storefront/internal/application/usecase/auth"
	appcfg "storefront/internal/infra/config"
	firebaseinfra "storefront/internal/infra/firebase"
	firestoreinfra "storefront/internal/infra/firestore"
	"storefront/internal/infra/secrets"
)

// Container は main.go から使う依存オブジェクトの束。
// 目的は main.go を極限まで薄くすること。
type Container struct {
	Config *appcfg.Config

	Sessions  *session.Registry
	CatalogUC *usecase.CatalogUsecase
	OrderUC   *usecase.OrderHistoryUsecase
	Identity  *identityadapter.Client

	fs        *firestoreinfra.ClientWrapper
	cleanupFn []func()
}

// Close は Cloud Run 終了時などに呼んで安全にリソースを閉じる。
func (c *Container) Close() error {
	for _, fn := range c.cleanupFn {
		fn()
	}
	if c.fs != nil {
		return c.fs.Close()
	}
	return nil
}

// RouterDeps converts the container into the HTTP facade's dependency set.
func (c *Container) RouterDeps() httpin.RouterDeps {
	deps := httpin.RouterDeps{
		Sessions:  c.Sessions,
		CatalogUC: c.CatalogUC,
		OrderUC:   c.OrderUC,
	}
	if c.Identity != nil && c.Identity.Auth != nil {
		deps.Verifier = c.Identity
	}
	return deps
}

// Build は DI コンテナを初期化して返す。
// Firestore / Firebase Auth は strict（エラーで落とす）。
// Secret Manager / GCS / SendGrid は best-effort（warn して機能を落とす）。
func Build(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}
	if strings.TrimSpace(cfg.FirestoreProjectID) == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	c := &Container{Config: cfg}

	// ------------------------------------------------------------
	// 1. 外部リソース初期化 (Firestore / Firebase / SM / GCS)
	// ------------------------------------------------------------
	fsw, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, err
	}
	c.fs = fsw

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	authClient, err := firebaseinfra.NewAuthClient(ctx, cfg.GetFirebaseProjectID(), credFile)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}

	var secretProvider *secrets.Provider
	if sm, err := secretmanager.NewClient(ctx); err != nil {
		log.Printf("[di] WARN: secretmanager.NewClient failed: %v (falling back to env secrets)", err)
	} else {
		secretProvider = secrets.NewProvider(sm, cfg.FirestoreProjectID)
		c.cleanupFn = append(c.cleanupFn, func() { _ = sm.Close() })
	}

	// ------------------------------------------------------------
	// 2. Identity client（web API key は SM 優先、env fallback）
	// ------------------------------------------------------------
	apiKey := cfg.IdentityAPIKey
	if secretProvider != nil && strings.TrimSpace(cfg.IdentityAPIKeySecret) != "" {
		if v, err := secretProvider.Get(ctx, cfg.IdentityAPIKeySecret); err != nil {
			log.Printf("[di] WARN: identity API key secret read failed: %v", err)
		} else {
			apiKey = v
		}
	}
	if apiKey == "" {
		log.Printf("[di] WARN: identity web API key is empty (password sign-in disabled)")
	}
	identityClient := identityadapter.NewClient(authClient, apiKey)
	c.Identity = identityClient

	// ------------------------------------------------------------
	// 3. Repository (outbound adapter) を初期化
	// ------------------------------------------------------------
	productRepo := fsrepo.NewProductRepositoryFS(fsw.Client)
	orderRepo := fsrepo.NewOrderRepositoryFS(fsw.Client)
	userRepo := fsrepo.NewUserRepositoryFS(fsw.Client)

	// ------------------------------------------------------------
	// 4. Optional: 画像ストア / 確認メール
	// ------------------------------------------------------------
	var imageStore usecase.ImageStore
	if strings.TrimSpace(cfg.GCSBucket) != "" {
		var opts []option.ClientOption
		if cfg.GCPCreds != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCPCreds))
		}
		if gcsClient, err := storage.NewClient(ctx, opts...); err != nil {
			log.Printf("[di] WARN: storage.NewClient failed: %v (image uploads disabled)", err)
		} else {
			imageStore = gcs.NewProductImageStore(gcsClient, cfg.GCSBucket)
			c.cleanupFn = append(c.cleanupFn, func() { _ = gcsClient.Close() })
			log.Printf("[di] OK: image store bucket=%s", cfg.GCSBucket)
		}
	}

	var mailer *mail.OrderMailer
	{
		sgKey := cfg.SendGridAPIKey
		if secretProvider != nil && strings.TrimSpace(cfg.SendGridKeySecret) != "" {
			if v, err := secretProvider.Get(ctx, cfg.SendGridKeySecret); err != nil {
				log.Printf("[di] WARN: sendgrid key secret read failed: %v", err)
			} else {
				sgKey = v
			}
		}
		if sgKey != "" && cfg.SendGridFrom != "" {
			mailer = mail.NewOrderMailer(mail.NewSendGridClient(sgKey), cfg.SendGridFrom)
			log.Printf("[di] OK: order confirmation mail from=%s", cfg.SendGridFrom)
		} else {
			log.Printf("[di] order confirmation mail not configured")
		}
	}

	// ------------------------------------------------------------
	// 5. Usecase + per-session bundle factory
	// ------------------------------------------------------------
	c.CatalogUC = usecase.NewCatalogUsecase(productRepo, imageStore)
	c.OrderUC = usecase.NewOrderHistoryUsecase(orderRepo)

	c.Sessions = session.NewRegistry(func() *session.Bundle {
		cart := usecase.NewCartUsecase(localslot.NewMemorySlot())
		sess := authuc.NewSession(ctx, identityClient, userRepo, orderRepo)
		var confirm usecase.ConfirmationMailer
		if mailer != nil {
			confirm = mailer
		}
		return &session.Bundle{
			Cart:     cart,
			Auth:     sess,
			Checkout: usecase.NewCheckoutUsecase(cart, sess, orderRepo, confirm),
		}
	}, cfg.SessionTTL)

	return c, nil
}

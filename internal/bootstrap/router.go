package bootstrap

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/suncrest/suncrest-backend/config"
	analyticshttp "github.com/suncrest/suncrest-backend/internal/analytics/http"
	analyticsrepo "github.com/suncrest/suncrest-backend/internal/analytics/repository"
	httpapi "github.com/suncrest/suncrest-backend/internal/api/http"
	apimw "github.com/suncrest/suncrest-backend/internal/api/http/middleware"
	apikeyshttp "github.com/suncrest/suncrest-backend/internal/apikeys/http"
	apikeysmw "github.com/suncrest/suncrest-backend/internal/apikeys/middleware"
	apikeysrepo "github.com/suncrest/suncrest-backend/internal/apikeys/repository"
	"github.com/suncrest/suncrest-backend/internal/apiversion"
	audithttp "github.com/suncrest/suncrest-backend/internal/audit/http"
	auditmw "github.com/suncrest/suncrest-backend/internal/audit/middleware"
	auditrepo "github.com/suncrest/suncrest-backend/internal/audit/repository"
	contractshttp "github.com/suncrest/suncrest-backend/internal/contracts/http"
	"github.com/suncrest/suncrest-backend/internal/contracts/esign"
	contractsrepo "github.com/suncrest/suncrest-backend/internal/contracts/repository"
	invoiceshttp "github.com/suncrest/suncrest-backend/internal/invoices/http"
	invoicesrepo "github.com/suncrest/suncrest-backend/internal/invoices/repository"
	"github.com/suncrest/suncrest-backend/internal/invoices/service"
	leadshttp "github.com/suncrest/suncrest-backend/internal/leads/http"
	leadsrepo "github.com/suncrest/suncrest-backend/internal/leads/repository"
	messaginghttp "github.com/suncrest/suncrest-backend/internal/messaging/http"
	messagingrepo "github.com/suncrest/suncrest-backend/internal/messaging/repository"
	"github.com/suncrest/suncrest-backend/internal/messaging/whatsapp"
	"github.com/suncrest/suncrest-backend/internal/ratelimit"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Pool        *pgxpool.Pool
	DB          *sql.DB
	Redis       *redis.Client
	Cfg         *config.Config
}

// BuildRouter wires every module onto one gin engine. Each resource is
// mounted under the unversioned /api prefix and under one explicit
// prefix per supported API version, so both /api/leads and
// /api/v1.0/leads resolve to the same handlers.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(apimw.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Pool)
	healthHandler.RegisterRoutes(r)

	dispatcher := apiversion.NewDispatcher(apiversion.DefaultRegistry(), apiversion.DefaultMigrationGraph())

	leadRepo := leadsrepo.NewLeadRepository(dep.DB)
	contractRepo := contractsrepo.NewContractRepository(dep.DB)
	invoiceRepo := invoicesrepo.NewInvoiceRepository(dep.DB)
	apiKeyRepo := apikeysrepo.NewAPIKeyRepository(dep.DB)
	auditRepo := auditrepo.NewAuditRepository(dep.DB)
	analyticsRepo := analyticsrepo.NewAnalyticsRepository(dep.DB)
	threadRepo := messagingrepo.NewThreadRepository(dep.Redis)

	signer := esign.NewClient(dep.Cfg.ESign.ProviderURL, dep.Cfg.ESign.APIKey)
	sender := whatsapp.NewClient(dep.Cfg.Messaging.ProviderURL, dep.Cfg.Messaging.AccessToken)

	leadHandler := leadshttp.NewHandler(leadRepo, dispatcher)
	contractHandler := contractshttp.NewHandler(contractRepo, leadRepo, signer, dispatcher)
	invoiceHandler := invoiceshttp.NewHandler(invoiceRepo, service.NewApprovalService(invoiceRepo), dispatcher)
	messagingHandler := messaginghttp.NewHandler(threadRepo, sender, dispatcher, dep.Cfg.Messaging.WebhookSecret)
	apiKeyHandler := apikeyshttp.NewHandler(apiKeyRepo)
	auditHandler := audithttp.NewHandler(auditRepo)
	analyticsHandler := analyticshttp.NewHandler(analyticsRepo, dispatcher)
	versionsHandler := httpapi.NewVersionsHandler(dispatcher)

	limiter := ratelimit.NewLimiter(dep.Redis)

	// Provider callbacks authenticate with shared secrets, not API keys.
	webhooks := r.Group("/webhooks")
	contractshttp.NewWebhookHandler(contractRepo, dep.Cfg.ESign.CallbackSecret).Register(webhooks)
	messagingHandler.RegisterWebhook(webhooks)

	groups := []*gin.RouterGroup{r.Group("/api")}
	for _, v := range dispatcher.Registry().Supported() {
		groups = append(groups, r.Group("/api/v"+v.String()))
	}

	for _, api := range groups {
		api.Use(dispatcher.Middleware())

		// Version discovery stays reachable without credentials.
		versionsHandler.RegisterRoutes(api)

		api.Use(apikeysmw.APIKeyMiddleware(apiKeyRepo))
		api.Use(ratelimit.Middleware(limiter))
		api.Use(auditmw.AuditMiddleware(auditRepo))

		leadHandler.Register(api.Group("/leads"))
		contractHandler.Register(api.Group("/contracts"))
		invoiceHandler.Register(api.Group("/invoices"))
		messagingHandler.Register(api.Group("/messaging"))
		apiKeyHandler.Register(api.Group("/api-keys"))
		auditHandler.Register(api.Group("/audit"))
		analyticsHandler.Register(api.Group("/analytics"))
	}

	return r
}

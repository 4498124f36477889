package config

const (
	// EnvPrefix is empty because each field carries its fully-qualified
	// ORDERSYNC_* variable name in its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside the envconfig tags
// (tests, docs, deploy manifests).
const (
	EnvAppEnv           = "ORDERSYNC_APP_ENV"
	EnvAppPort          = "ORDERSYNC_APP_PORT"
	EnvServiceKind      = "ORDERSYNC_SERVICE_KIND"
	EnvDBDSN            = "ORDERSYNC_DB_DSN"
	EnvRabbitURI        = "ORDERSYNC_RABBIT_URI"
	EnvRabbitExchange   = "ORDERSYNC_RABBIT_EXCHANGE"
	EnvRabbitRoutingKey = "ORDERSYNC_RABBIT_ROUTING_KEY"
	EnvRabbitQueue      = "ORDERSYNC_RABBIT_QUEUE"
	EnvUserBackendA     = "ORDERSYNC_GATEWAY_USER_BACKEND_A"
	EnvUserBackendB     = "ORDERSYNC_GATEWAY_USER_BACKEND_B"
	EnvOrderBackend     = "ORDERSYNC_GATEWAY_ORDER_BACKEND"
	EnvSplitProbability = "ORDERSYNC_GATEWAY_SPLIT_PROBABILITY"
	EnvOrderServiceURL  = "ORDERSYNC_SYNC_ORDER_SERVICE_URL"
)

// Service kinds selectable via ORDERSYNC_SERVICE_KIND.
const (
	ServiceKindGateway      = "gateway"
	ServiceKindUserService  = "user-service"
	ServiceKindOrderService = "order-service"
	ServiceKindSyncWorker   = "sync-worker"
)

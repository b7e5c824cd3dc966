// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Init se llama una vez en main con el entorno y nivel configurados:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "accounts"})
//	defer logger.Sync()
//
// Los handlers inyectan un logger con request_id vía ToContext y los
// servicios lo recuperan con From(ctx). Sin logger en el contexto, From
// devuelve el singleton.
//
// "dev" usa consola con colores; "prod" usa JSON con stacktrace desde error.
package logger

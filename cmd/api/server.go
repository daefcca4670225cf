package main

import (
	"crypto/tls"
	"net/http"
	"os"

	mw "khata_ledger/internal/api/middlewares"
	"khata_ledger/internal/api/routers"
	"khata_ledger/internal/repositories/memstore"
	"khata_ledger/internal/repositories/sqlconnect"
	"khata_ledger/internal/services"
	"khata_ledger/pkg/cron"
	"khata_ledger/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func newStore() (services.Store, error) {
	if utils.GetEnv("LEDGER_STORE", "mysql") == "memory" {
		utils.Logger.Warn("Using the in-memory store, data is lost on restart")
		return memstore.New(), nil
	}

	if err := sqlconnect.ConnectDb(); err != nil {
		return nil, err
	}
	return sqlconnect.NewStore(sqlconnect.DB), nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.Fatalf("failed to load .env: %v", err)
	}

	utils.InitLogger()

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	store, err := newStore()
	if err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}
	ledger := services.NewLedger(store)

	var mail *utils.MailConfig
	if mailCfg, err := utils.MailConfigFromEnv(); err != nil {
		utils.Logger.Warnf("Emails disabled: %v", err)
	} else {
		mail = &mailCfg
		schedule := utils.GetEnv("REMINDER_SCHEDULE", cron.DefaultReminderSchedule)
		c, err := cron.StartCronJob(ledger, cron.MailReminderSender(mailCfg), schedule)
		if err != nil {
			utils.Logger.Fatal(err)
		}
		defer c.Stop()
	}

	port := utils.GetEnv("SERVER_PORT", ":3000")

	cert := os.Getenv("CERT_FILE")
	key := os.Getenv("KEY_FILE")

	router := routers.MainRouter(ledger, mail)
	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, "/users/signup", "/users/login", "/categories/")

	secureMux := mw.RequestLogger(jwtMiddleware(mw.SecurityHeaders(router)))

	server := &http.Server{
		Addr:    port,
		Handler: secureMux,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	utils.Logger.Infof("Server is running on port %s", port)
	if cert != "" && key != "" {
		err = server.ListenAndServeTLS(cert, key)
	} else {
		utils.Logger.Warn("CERT_FILE or KEY_FILE not set, serving plain HTTP")
		err = server.ListenAndServe()
	}
	if err != nil {
		utils.Logger.Fatalf("Error starting the server: %v", err)
	}
}

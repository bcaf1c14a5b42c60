// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	appctx "moneta/internal/core/context"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain/catalogs/category"
	"moneta/internal/domain/catalogs/customer"
	"moneta/internal/domain/documents"
	"moneta/internal/domain/documents/invoice"
	"moneta/internal/domain/documents/quote"
	"moneta/internal/domain/ledger"
	"moneta/internal/infrastructure/storage/postgres"
	"moneta/internal/infrastructure/storage/postgres/catalog_repo"
	"moneta/internal/infrastructure/storage/postgres/document_repo"
	"moneta/internal/infrastructure/storage/postgres/ledger_repo"
	"moneta/pkg/logger"
	"moneta/pkg/numerator"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if err := postgres.RunMigrations(dbURL); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	userID, err := seedDemoUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed demo user", "error", err)
	}

	if err := seedDemoData(ctx, pool, log, userID); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedDemoUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	email := os.Getenv("DEMO_EMAIL")
	if email == "" {
		email = "demo@moneta.dev"
	}

	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = "Demo1234!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE lower(email) = lower($1)`,
		email,
	).Scan(&existingID)
	if err == nil {
		log.Infow("demo user already exists", "email", email, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check demo user exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, company_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, 'Demo User', 'Moneta Demo SARL', true, $4, $4)
	`, userID, email, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert demo user: %w", err)
	}

	log.Infow("demo user created", "email", email, "password", password)
	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, userID id.ID) error {
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: userID})

	txm := postgres.NewTxManager(pool)
	num := numerator.New(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})

	catService := category.NewService(catalog_repo.NewCategoryRepo(txm))
	custService := customer.NewService(catalog_repo.NewCustomerRepo(txm))
	ledgerService := ledger.NewService(ledger_repo.NewTransactionRepo(txm), catalog_repo.NewCategoryRepo(txm), time.Now)

	invoiceRepo := document_repo.NewInvoiceRepo(txm)
	customerRepo := catalog_repo.NewCustomerRepo(txm)
	invoiceService := invoice.NewService(invoiceRepo, customerRepo, num, txm, time.Now)
	quoteService := quote.NewService(document_repo.NewQuoteRepo(txm), invoiceRepo, customerRepo, num, txm, time.Now)

	// --- Categories ---
	categories := []struct {
		name string
		kind category.Kind
	}{
		{"Consulting", category.KindIncome},
		{"Product sales", category.KindIncome},
		{"Rent", category.KindExpense},
		{"Software", category.KindExpense},
		{"Travel", category.KindExpense},
	}

	catIDs := make(map[string]id.ID, len(categories))
	for _, c := range categories {
		cat, err := catService.Create(ctx, c.name, c.kind, "")
		if err != nil {
			log.Warnw("category not created, may already exist", "name", c.name, "error", err)
			continue
		}
		catIDs[c.name] = cat.ID
	}

	// --- Customers ---
	cust, err := custService.Create(ctx, &customer.Customer{
		Name:  "Acme Corp",
		Email: "billing@acme.example",
	})
	if err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	// --- Transactions over the trailing months ---
	now := time.Now().UTC()
	for i := 5; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		date := time.Date(month.Year(), month.Month(), 10, 0, 0, 0, 0, time.UTC)

		income := decimal.NewFromInt(int64(3000 + 250*(5-i)))
		expense := decimal.NewFromInt(int64(1200 + 50*(5-i)))

		if catID, ok := catIDs["Consulting"]; ok {
			if _, err := ledgerService.Record(ctx, &ledger.Transaction{
				CategoryID:  &catID,
				Amount:      income,
				Date:        date,
				Description: "Monthly consulting retainer",
			}); err != nil {
				return fmt.Errorf("seed income transaction: %w", err)
			}
		}

		if catID, ok := catIDs["Rent"]; ok {
			rate := types.RoundRate(decimal.NewFromInt(20))
			if _, err := ledgerService.Record(ctx, &ledger.Transaction{
				CategoryID:  &catID,
				Amount:      expense,
				Date:        date.AddDate(0, 0, 2),
				Description: "Office rent",
				TaxRate:     &rate,
			}); err != nil {
				return fmt.Errorf("seed expense transaction: %w", err)
			}
		}
	}

	// --- A quote converted into an invoice ---
	q, err := quoteService.Create(ctx, quote.CreateInput{
		CustomerID: cust.ID,
		Notes:      "Initial project proposal",
		Lines: []documents.Line{
			{Description: "Discovery workshop", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(600), TaxRate: decimal.NewFromInt(20)},
			{Description: "Implementation sprint", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(450), TaxRate: decimal.NewFromInt(20)},
		},
	})
	if err != nil {
		return fmt.Errorf("seed quote: %w", err)
	}

	if _, err := quoteService.SetStatus(ctx, q.ID, quote.StatusSent); err != nil {
		return fmt.Errorf("send quote: %w", err)
	}
	if _, err := quoteService.SetStatus(ctx, q.ID, quote.StatusAccepted); err != nil {
		return fmt.Errorf("accept quote: %w", err)
	}

	inv, err := quoteService.ConvertToInvoice(ctx, q.ID, quote.ConvertOptions{})
	if err != nil {
		return fmt.Errorf("convert quote: %w", err)
	}

	// --- A standalone draft invoice ---
	if _, err := invoiceService.Create(ctx, invoice.CreateInput{
		CustomerID: cust.ID,
		Notes:      "Ad hoc support",
		Lines: []documents.Line{
			{Description: "Support hours", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20)},
		},
	}); err != nil {
		return fmt.Errorf("seed invoice: %w", err)
	}

	log.Infow("demo data seeded",
		"customer", cust.Name,
		"quote", q.Number,
		"invoice", inv.Number,
	)
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"loopwise-go/internal/api"
	"loopwise-go/internal/common"
	"loopwise-go/internal/config"
	"loopwise-go/internal/formance"
	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type auditFlags struct {
	email      string
	password   string
	importPath string
	exportPath string
	limit      int
	ledger     bool
}

func parseFlags() (*auditFlags, error) {
	emailFlag := flag.String("email", "", "Account email (required)")
	passwordFlag := flag.String("password", "", "Account password")
	importFlag := flag.String("import", "", "CSV file to import before reporting")
	exportFlag := flag.String("export", "", "Write all transactions to this CSV file")
	limitFlag := flag.Int("limit", 20, "Number of recent transactions to print (0 for all)")
	ledgerFlag := flag.Bool("ledger", false, "Compare local balances with the Formance ledger")
	flag.Parse()

	if *emailFlag == "" {
		return nil, fmt.Errorf("--email is required")
	}
	return &auditFlags{
		email:      *emailFlag,
		password:   *passwordFlag,
		importPath: *importFlag,
		exportPath: *exportFlag,
		limit:      *limitFlag,
		ledger:     *ledgerFlag,
	}, nil
}

func importFile(ctx context.Context, controller *api.Controller, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Fatal("Failed to read import file", zap.String("path", path), zap.Error(err))
	}

	result, err := controller.ImportCSV(ctx, data)
	if err != nil {
		zap.L().Fatal("Import could not be attempted", zap.Error(err))
	}

	common.PrintHeader("CSV IMPORT", common.DefaultWidth)
	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Hash:      %s\n", common.ShortId(result.FileHash))
	if result.Success {
		fmt.Printf("Imported:  %d\n", result.Imported)
		fmt.Printf("Skipped:   %d\n", result.Skipped)
	} else {
		fmt.Printf("Error:     %s\n", result.Error)
	}
	common.PrintSeparator("=", common.DefaultWidth)
}

func exportFile(controller *api.Controller, path string) {
	f, err := os.Create(path)
	if err != nil {
		zap.L().Fatal("Failed to create export file", zap.String("path", path), zap.Error(err))
	}
	defer f.Close()

	if err := controller.ExportCSV(f); err != nil {
		zap.L().Error("Export failed", zap.String("path", path), zap.Error(err))
		return
	}
	fmt.Printf("\nExported transactions to %s\n", path)
}

func printLedgerComparison(ctx context.Context, ledger *formance.Service, snapshot models.AppState) {
	fmt.Printf("\n┌─ Ledger: users:%s\n", snapshot.User.Id)
	common.PrintBoxSeparator(78)

	mirrored, err := ledger.GetUserBalances(ctx, snapshot.User.Id)
	if err != nil {
		zap.L().Error("Failed to read ledger balances", zap.Error(err))
		return
	}
	if len(mirrored) == 0 {
		fmt.Println("└  no mirrored transactions")
		return
	}
	common.PrintAmounts(mirrored)

	// The opening balance is never posted, so only the folded history is
	// comparable with the ledger.
	fmt.Println("\n┌─ Local history (excluding opening balance)")
	local := make(map[string]decimal.Decimal, len(mirrored))
	for currency := range mirrored {
		local[currency] = snapshot.User.Balance(currency).Sub(snapshot.OpeningBalances[currency])
	}
	common.PrintAmounts(local)
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	opts, err := parseFlags()
	if err != nil {
		logger.Fatal("Invalid flags", zap.Error(err))
	}

	logger.Info("Starting audit report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.Controller.Login(ctx, opts.email, opts.password); err != nil {
		logger.Fatal("Login failed", zap.String("email", opts.email), zap.Error(err))
	}

	if opts.importPath != "" {
		importFile(ctx, services.Controller, opts.importPath)
	}

	snapshot := services.Controller.Snapshot()

	common.PrintHeader("AUDIT REPORT", common.DefaultWidth)
	fmt.Printf("User:    %s (%s)\n", snapshot.User.DisplayName, snapshot.User.Email)
	fmt.Printf("Wallet:  %s\n", snapshot.User.WalletId)
	for currency, balance := range snapshot.User.Balances {
		fmt.Printf("Balance: %s %s\n", balance.StringFixed(2), currency)
	}

	fmt.Printf("\n┌─ Summary\n")
	common.PrintBoxSeparator(78)
	common.PrintSummary(services.Controller.Summary())

	fmt.Printf("\n┌─ Transactions (%d)\n", len(snapshot.Transactions))
	common.PrintBoxSeparator(78)
	common.PrintTransactions(snapshot.Transactions, opts.limit)

	if opts.ledger {
		if services.Ledger == nil {
			logger.Warn("Ledger comparison requested but FORMANCE_ENABLED is false")
		} else {
			printLedgerComparison(ctx, services.Ledger, snapshot)
		}
	}

	if opts.exportPath != "" {
		exportFile(services.Controller, opts.exportPath)
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d transactions, %d subscriptions",
		len(snapshot.Transactions), len(snapshot.Subscriptions)), common.DefaultWidth)

	logger.Info("Audit report completed",
		zap.Int("transactions", len(snapshot.Transactions)),
		zap.Bool("ledger", opts.ledger))
}

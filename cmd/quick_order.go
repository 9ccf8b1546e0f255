package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"autoparts-storefront/activity"
	"autoparts-storefront/cart"
	"autoparts-storefront/models"
	"autoparts-storefront/quickorder"
	"autoparts-storefront/repository"
	"autoparts-storefront/service"

	"github.com/spf13/cobra"
)

// cliOwner owns the workspace of an offline run
const cliOwner = "cli"

var (
	csvFile   string
	pasteFile string
	saveQuote bool
	userID    string
	userEmail string
)

var quickOrderCmd = &cobra.Command{
	Use:   "quick-order",
	Short: "Validate a part list against the catalog",
	Long: `Runs the quick order pipeline on a CSV file or pasted text and prints one row per line.

Examples:
  storefront quick-order --csv order.csv
  storefront quick-order --paste - --save-quote --user-id user_2abc < parts.txt`,
	RunE: runQuickOrder,
}

func init() {
	quickOrderCmd.Flags().StringVar(&csvFile, "csv", "", "CSV file with part_number and qty columns")
	quickOrderCmd.Flags().StringVar(&pasteFile, "paste", "", "Text file with one 'PART QTY' per line (- for stdin)")
	quickOrderCmd.Flags().BoolVar(&saveQuote, "save-quote", false, "Save the matched lines as a quote")
	quickOrderCmd.Flags().StringVar(&userID, "user-id", "", "Quote owner (required with --save-quote)")
	quickOrderCmd.Flags().StringVar(&userEmail, "user-email", "", "Quote owner email")
	quickOrderCmd.MarkFlagsMutuallyExclusive("csv", "paste")
	quickOrderCmd.MarkFlagsOneRequired("csv", "paste")
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runQuickOrder(cmd *cobra.Command, args []string) error {
	if saveQuote && strings.TrimSpace(userID) == "" {
		return fmt.Errorf("--save-quote requires --user-id")
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	writer, err := activity.NewWriter(cfg.Activity)
	if err != nil {
		return fmt.Errorf("failed to initialize activity sink: %w", err)
	}
	publisher := activity.NewPublisher(writer, 0)
	defer publisher.Close()

	timeout := cfg.BackendTimeout()
	svc := quickorder.NewService(
		quickorder.NewOrchestrator(service.NewCatalogClient(cfg.Backend.APIBaseURL, timeout, nil)),
		quickorder.NewMaterializer(
			cart.NewStore(repository.NewMemoryStateRepository()),
			service.NewQuoteClient(cfg.Backend.APIBaseURL, timeout, nil),
		),
		quickorder.NewWorkspaceRegistry(0),
		publisher,
	)

	kind, path := quickorder.TabPaste, pasteFile
	if csvFile != "" {
		kind, path = quickorder.TabBulk, csvFile
	}
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var res quickorder.Result
	if kind == quickorder.TabBulk {
		res, err = svc.ParseCSV(ctx, cliOwner, data)
	} else {
		res, err = svc.ParsePaste(ctx, cliOwner, string(data))
	}
	printNotices(out, res.Notices)
	if err != nil {
		return err
	}
	if len(res.Tab.Items) == 0 {
		return nil
	}

	res, err = svc.Validate(ctx, cliOwner, kind)
	if err != nil {
		printNotices(out, res.Notices)
		return err
	}
	printLines(out, res.Tab.Validated)
	printNotices(out, res.Notices)

	if !saveQuote {
		return nil
	}
	user := models.User{ID: strings.TrimSpace(userID), Email: strings.TrimSpace(userEmail)}
	res, err = svc.SaveQuote(ctx, cliOwner, user, kind)
	printNotices(out, res.Notices)
	if err != nil && !quickorder.IsPrecondition(err) {
		return err
	}
	if res.Quote != nil {
		fmt.Fprintf(out, "Quote token: %s\n", res.Quote.Token)
	}
	return nil
}

func printLines(out io.Writer, lines []quickorder.ValidatedLine) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPART\tQTY\tSTATUS\tPRODUCT\tPRICE\tNOTE")
	for i, l := range lines {
		status, product, price, note := "missing", "", "", ""
		if l.Message != nil {
			note = *l.Message
		}
		if l.Found() {
			status = "found"
			product = l.Product.DisplayName()
			price = fmt.Sprintf("%.2f", l.Product.PriceOrZero())
			if l.MappedTo != nil {
				note = "mapped to " + *l.MappedTo
			}
			if l.Hint != "" {
				status, note = "obsolete", l.Hint
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n", i+1, l.PartNumber, l.Qty, status, product, price, note)
	}
	_ = tw.Flush()
}

func printNotices(out io.Writer, notices []models.Notice) {
	for _, n := range notices {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	}
}

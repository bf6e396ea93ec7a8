package invoicer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

// GenerationError marks a failure that left no invoice behind; callers may
// retry on the next scan.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("invoice generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PaymentDetails is printed on every invoice so the client can settle by
// whichever rail they prefer.
type PaymentDetails struct {
	WalletAddress string
	BankName      string
	BankAccount   string
	BankRouting   string
}

// Generator produces one invoice per order and returns its reference.
type Generator interface {
	Generate(ctx context.Context, order *ordertypes.Order) (string, error)
}

// FileGenerator writes plain-text invoices into a directory, one file per
// reference.
type FileGenerator struct {
	dir     string
	details PaymentDetails
}

func NewFileGenerator(dir string, details PaymentDetails) *FileGenerator {
	return &FileGenerator{
		dir:     dir,
		details: details,
	}
}

func newReference() string {
	return fmt.Sprintf("INV-%v", strings.ToUpper(uuid.NewString()[:8]))
}

func (g *FileGenerator) Generate(ctx context.Context, order *ordertypes.Order) (string, error) {
	ref := newReference()

	var b strings.Builder
	fmt.Fprintf(&b, "Invoice %v\n", ref)
	fmt.Fprintf(&b, "Issued %v\n\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "Order: %v\n", order.ID)
	fmt.Fprintf(&b, "Title: %v\n", order.Title)
	if order.ClientName != "" {
		fmt.Fprintf(&b, "Client: %v\n", order.ClientName)
	}
	fmt.Fprintf(&b, "Amount due: %v\n\n", order.BudgetAmount)
	fmt.Fprintf(&b, "Pay by crypto (USDC, Polygon): %v\n", g.details.WalletAddress)
	if g.details.BankAccount != "" {
		fmt.Fprintf(&b, "Pay by wire: %v, account %v, routing %v\n",
			g.details.BankName, g.details.BankAccount, g.details.BankRouting)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", &GenerationError{Err: err}
	}
	path := filepath.Join(g.dir, ref+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", &GenerationError{Err: err}
	}
	return ref, nil
}

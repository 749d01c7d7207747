package notifications

import (
	"net/url"
	"testing"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func sampleOrder() orders.Order {
	return orders.Order{
		ID: "ORD-20250314-123456",
		Items: []orders.Item{
			{ProductID: "p-001", Name: "Cabo USB-C Reforçado", Price: decimal.RequireFromString("24.90"), Qty: 2},
			{ProductID: "p-003", Name: "Película 3D Premium", Price: decimal.RequireFromString("29.90"), Qty: 1},
		},
		Total:     decimal.RequireFromString("87.60"),
		PayMethod: enums.PaymentMethodCard,
		Address:   types.Address{Line1: "Rua A, 1", District: "Centro", Extra: "ap 2"},
	}
}

func TestNormalizeWhatsApp(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                   "",
		"sem número":         "",
		"+55 (41) 99727-7806": "5541997277806",
		"(41) 99727-7806":    "5541997277806",
		"41 3333-4444":       "554133334444",
		"5541":               "5541",
		"1-800-555-0199":     "5518005550199",
		"+1 212 555 01999":   "121255501999",
	}
	for raw, want := range cases {
		if got := NormalizeWhatsApp(raw); got != want {
			t.Fatalf("NormalizeWhatsApp(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	want := "Pedido ORD-20250314-123456\n" +
		"Itens: 2x Cabo USB-C Reforçado, 1x Película 3D Premium\n" +
		"Total: R$ 87,60\n" +
		"Pagamento: Cartao (simulado)\n" +
		"Endereco: Rua A, 1 - Centro - ap 2"
	if got := BuildMessage(sampleOrder()); got != want {
		t.Fatalf("unexpected message:\n%s", got)
	}
}

func TestLink(t *testing.T) {
	t.Parallel()

	linker, err := NewLinker("")
	if err != nil {
		t.Fatalf("new linker: %v", err)
	}
	store := catalog.Store{ID: "loja-01", WhatsApp: "(41) 99727-7806"}

	n, err := linker.Link(store, sampleOrder())
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	parsed, err := url.Parse(n.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if parsed.Host != "wa.me" || parsed.Path != "/5541997277806" {
		t.Fatalf("unexpected target %s", n.URL)
	}
	if got := parsed.Query().Get("text"); got != BuildMessage(sampleOrder()) {
		t.Fatalf("text round trip mismatch: %q", got)
	}
}

func TestLinkWithoutNumber(t *testing.T) {
	t.Parallel()

	linker, err := NewLinker("https://chat.example.com/")
	if err != nil {
		t.Fatalf("new linker: %v", err)
	}
	_, err = linker.Link(catalog.Store{ID: "loja-09"}, sampleOrder())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency || typed.Message() != MsgNoContact {
		t.Fatalf("expected dependency error with contact message, got %v", err)
	}
}

func TestNewLinkerRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	if _, err := NewLinker("wa.me"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package notifications

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
)

const (
	// DefaultBaseURL is the WhatsApp click-to-chat endpoint.
	DefaultBaseURL = "https://wa.me"

	// MsgNoContact is surfaced when the store has no usable number.
	MsgNoContact = "Loja sem WhatsApp cadastrado."

	brazilCode = "55"
)

// Notification is the deep link handed to the client after checkout.
type Notification struct {
	Number  string `json:"number"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Linker builds order deep links against a configurable base URL.
type Linker struct {
	base *url.URL
}

func NewLinker(baseURL string) (*Linker, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notify base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notify base url must be absolute")
	}
	return &Linker{base: base}, nil
}

// Link addresses the order summary to the store's WhatsApp number. A store
// without a usable number yields CodeDependency carrying MsgNoContact; the
// order itself is unaffected.
func (l *Linker) Link(store catalog.Store, order orders.Order) (Notification, error) {
	number := NormalizeWhatsApp(store.WhatsApp)
	if number == "" {
		return Notification{}, pkgerrors.New(pkgerrors.CodeDependency, MsgNoContact).
			WithDetails(map[string]any{"store_id": store.ID})
	}
	message := BuildMessage(order)

	u := *l.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + number
	u.RawQuery = url.Values{"text": {message}}.Encode()
	return Notification{Number: number, Message: message, URL: u.String()}, nil
}

// NormalizeWhatsApp keeps digits only and prefixes Brazilian numbers that
// lack the country code.
func NormalizeWhatsApp(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, brazilCode) && len(digits) >= 12:
		return digits
	case len(digits) == 10 || len(digits) == 11:
		return brazilCode + digits
	default:
		return digits
	}
}

// BuildMessage renders the order summary sent to the store.
func BuildMessage(order orders.Order) string {
	return strings.Join([]string{
		"Pedido " + order.ID,
		"Itens: " + order.ItemsLine(),
		"Total: " + types.FormatBRL(order.Total),
		"Pagamento: " + order.PayMethod.Label(),
		"Endereco: " + order.Address.Line(),
	}, "\n")
}

// Package pncp is a client for the consultation API of the Brazilian public
// procurement portal (Portal Nacional de Contratações Públicas). It collects
// published procurement notices and their line items.
package pncp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/Pedro004-dot/alicit/internal/utils"
)

const (
	defaultPublicationURL = "https://pncp.gov.br/api/consulta/v1/contratacoes/publicacao"
	defaultItemsBaseURL   = "https://pncp.gov.br/api/pncp"

	userAgent = "alicit (procurement matching)"

	// The consultation API paginates per state. Five pages of fifty keeps a
	// nationwide sweep within the portal's tolerance.
	pageSize         = 50
	maxPagesPerState = 5

	// Contracting modality 6 is the electronic reverse auction
	// (pregão eletrônico), the only modality collected.
	electronicAuction = 6

	dateLayout = "20060102"

	defaultPageDelay = 500 * time.Millisecond
)

// States lists the 27 federative units swept on a full collection run.
var States = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS",
	"MG", "PA", "PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC",
	"SP", "SE", "TO",
}

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client

	PublicationURL string
	ItemsBaseURL   string

	// pageDelay throttles consecutive page requests against one state.
	pageDelay time.Duration
}

func New(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		PublicationURL: defaultPublicationURL,
		ItemsBaseURL:   defaultItemsBaseURL,
		pageDelay:      defaultPageDelay,
	}
}

// publicationResponse is the paginated envelope of the publication endpoint.
// Notices are decoded generically first and mapped onto Notice afterwards.
type publicationResponse struct {
	Data       []map[string]any `json:"data"`
	TotalPages int              `json:"totalPaginas"`
	Page       int              `json:"numeroPagina"`
}

// FetchPublished sweeps the given states for notices published between start
// and end (inclusive, dates only). A failing state is logged and skipped so
// one regional outage never loses the national sweep; only context
// cancellation aborts.
func (c *Client) FetchPublished(ctx context.Context, start, end time.Time, states []string) ([]Notice, error) {
	if len(states) == 0 {
		states = States
	}

	var notices []Notice
	for _, state := range states {
		found, err := c.fetchState(ctx, start, end, state)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logger.Warn("state sweep failed, moving on",
				zap.String("uf", state),
				zap.Error(err),
			)
			continue
		}

		if len(found) > 0 {
			c.logger.Debug("collected notices",
				zap.String("uf", state),
				zap.Int("notices", len(found)),
			)
		}
		notices = append(notices, found...)
	}

	return notices, nil
}

func (c *Client) fetchState(ctx context.Context, start, end time.Time, state string) ([]Notice, error) {
	var notices []Notice

	for page := 1; page <= maxPagesPerState; page++ {
		if page > 1 {
			if err := utils.WaitFor(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}

		q := url.Values{}
		q.Set("dataInicial", start.Format(dateLayout))
		q.Set("dataFinal", end.Format(dateLayout))
		q.Set("uf", state)
		q.Set("pagina", strconv.Itoa(page))
		q.Set("quantidade", strconv.Itoa(pageSize))
		q.Set("codigoModalidadeContratacao", strconv.Itoa(electronicAuction))

		var resp publicationResponse
		if err := c.getJSON(ctx, c.PublicationURL, q, &resp); err != nil {
			return nil, fmt.Errorf("fetching %s page %d: %w", state, page, err)
		}

		batch, err := decodeNotices(resp.Data)
		if err != nil {
			return nil, err
		}
		notices = append(notices, batch...)

		// A short page is the last one.
		if len(resp.Data) < pageSize {
			break
		}
	}

	return notices, nil
}

// FetchItems retrieves the line items of one notice from the agency
// purchase endpoint.
func (c *Client) FetchItems(ctx context.Context, notice Notice) ([]Item, error) {
	endpoint := fmt.Sprintf("%s/v1/orgaos/%s/compras/%d/%d/itens",
		c.ItemsBaseURL, notice.Agency.CNPJ, notice.PurchaseYear, notice.Sequential)

	var items []Item
	if err := c.getJSON(ctx, endpoint, nil, &items); err != nil {
		return nil, fmt.Errorf("fetching items of %s: %w", notice.ControlNumber, err)
	}
	return items, nil
}

// decodeNotices maps the generic publication payload onto typed notices,
// reusing the json field names as the mapping tags.
func decodeNotices(raw []map[string]any) ([]Notice, error) {
	var notices []Notice

	cfg := &mapstructure.DecoderConfig{
		Result:           &notices,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding notices: %w", err)
	}

	return notices, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("pncp request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The portal answers 204 when a query matches nothing.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

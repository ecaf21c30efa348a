package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound indica que o ledger não conhece a conta informada
var ErrNotFound = errors.New("ledger: not found")

// Ref é o par id/nome devolvido pelos endpoints de resolução
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client fala com o ledger-service (contas e casas de apostas)
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// ResolveSportsbook busca a casa por id ou nome; o ledger cria se não existir
func (c *Client) ResolveSportsbook(ctx context.Context, input string) (Ref, error) {
	body, _ := json.Marshal(map[string]string{"sportsbook": input})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/sportsbooks/resolve", bytes.NewReader(body))
	if err != nil {
		return Ref{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// ResolveAccount busca a conta por id ou identificador; não cria contas
func (c *Client) ResolveAccount(ctx context.Context, input string) (Ref, error) {
	u := c.BaseURL + "/accounts/resolve?account=" + url.QueryEscape(input)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Ref{}, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (Ref, error) {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return Ref{}, err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return Ref{}, ErrNotFound
	}
	if res.StatusCode >= 300 {
		return Ref{}, fmt.Errorf("ledger %s http %d", req.URL.Path, res.StatusCode)
	}
	var out Ref
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Ref{}, err
	}
	return out, nil
}

// Package price queries the Economiza Alagoas retail price API for recent
// sale prices at a single configured merchant.
package price

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fixed query parameters: only the configured merchant, only the last 3
// days of sales, one page of up to 50 records.
const (
	dayWindow = 3
	pageSize  = 50
)

// Provider failure categories; each maps to a distinct user-facing message
// in the engine.
var (
	ErrTimeout     = errors.New("price catalog timed out")
	ErrUnavailable = errors.New("price catalog unavailable")
	ErrRejected    = errors.New("price catalog rejected the query")
)

type Record struct {
	Description             string
	StandardizedDescription string
	Price                   float64
	Unit                    string
	GTIN                    string
	SaleDate                string
}

type QueryResult struct {
	Total   int
	Records []Record
}

// Catalog is the read-only contract the engine consumes.
type Catalog interface {
	Search(ctx context.Context, product string) (*QueryResult, error)
}

type Client struct {
	httpClient   *http.Client
	apiURL       string
	token        string
	merchantCNPJ string
}

func NewClient(apiURL, token, merchantCNPJ string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		apiURL:       apiURL,
		token:        token,
		merchantCNPJ: merchantCNPJ,
	}
}

type searchRequest struct {
	Produto struct {
		Descricao string `json:"descricao"`
	} `json:"produto"`
	Estabelecimento struct {
		Individual struct {
			CNPJ string `json:"cnpj"`
		} `json:"individual"`
	} `json:"estabelecimento"`
	Dias               int `json:"dias"`
	Pagina             int `json:"pagina"`
	RegistrosPorPagina int `json:"registrosPorPagina"`
}

type searchResponse struct {
	TotalRegistros int `json:"totalRegistros"`
	Conteudo       []struct {
		Produto struct {
			Descricao      string `json:"descricao"`
			DescricaoSefaz string `json:"descricaoSefaz"`
			UnidadeMedida  string `json:"unidadeMedida"`
			GTIN           string `json:"gtin"`
			Venda          struct {
				ValorVenda float64 `json:"valorVenda"`
				DataVenda  string  `json:"dataVenda"`
			} `json:"venda"`
		} `json:"produto"`
	} `json:"conteudo"`
}

func (c *Client) Search(ctx context.Context, product string) (*QueryResult, error) {
	var reqBody searchRequest
	reqBody.Produto.Descricao = strings.ToUpper(product)
	reqBody.Estabelecimento.Individual.CNPJ = c.merchantCNPJ
	reqBody.Dias = dayWindow
	reqBody.Pagina = 1
	reqBody.RegistrosPorPagina = pageSize

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("AppToken", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s %s", ErrRejected, resp.Status, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	result := &QueryResult{Total: payload.TotalRegistros}
	for _, item := range payload.Conteudo {
		p := item.Produto
		result.Records = append(result.Records, Record{
			Description:             p.Descricao,
			StandardizedDescription: p.DescricaoSefaz,
			Price:                   p.Venda.ValorVenda,
			Unit:                    p.UnidadeMedida,
			GTIN:                    p.GTIN,
			SaleDate:                p.Venda.DataVenda,
		})
	}
	return result, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mercalia/catalogo-api/internal/application/ports"
)

var _ ports.Motor = (*Client)(nil)

// Client habla con Elasticsearch sobre HTTP. Una llamada saliente por
// operación; sin caché, sin reintentos, sin circuit breaking.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient construye el cliente del motor de búsqueda.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "search-client").Logger(),
	}
}

// respuestaBusqueda es el subconjunto de la respuesta de _search que se consume.
type respuestaBusqueda struct {
	Hits struct {
		Hits []struct {
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Buscar ejecuta POST /<indice>/_search con el cuerpo dado.
func (c *Client) Buscar(ctx context.Context, indice string, cuerpo map[string]any) ([]map[string]any, error) {
	respBody, err := c.hacer(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_search", c.baseURL, indice), cuerpo, nil)
	if err != nil {
		return nil, err
	}
	var parsed respuestaBusqueda
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("respuesta del motor de búsqueda no parseable: %w", err)
	}
	docs := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}

// Indexar ejecuta PUT /<indice>/_doc/<id>. Usar el codigo del producto como
// id del documento hace el upsert idempotente.
func (c *Client) Indexar(ctx context.Context, indice, id string, doc map[string]any) error {
	_, err := c.hacer(ctx, http.MethodPut, fmt.Sprintf("%s/%s/_doc/%s", c.baseURL, indice, id), doc, nil)
	return err
}

// EliminarDoc ejecuta DELETE /<indice>/_doc/<id>; tolera 404.
func (c *Client) EliminarDoc(ctx context.Context, indice, id string) error {
	_, err := c.hacer(ctx, http.MethodDelete, fmt.Sprintf("%s/%s/_doc/%s", c.baseURL, indice, id), nil, []int{http.StatusNotFound})
	return err
}

// hacer ejecuta una petición JSON y devuelve el cuerpo. Un estado no-2xx (y
// no tolerado) se reporta como error con el estado del upstream embebido.
func (c *Client) hacer(ctx context.Context, metodo, url string, cuerpo map[string]any, tolerados []int) ([]byte, error) {
	var lector io.Reader
	if cuerpo != nil {
		raw, err := json.Marshal(cuerpo)
		if err != nil {
			return nil, fmt.Errorf("serializar consulta: %w", err)
		}
		lector = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, metodo, url, lector)
	if err != nil {
		return nil, fmt.Errorf("construir petición al motor de búsqueda: %w", err)
	}
	if cuerpo != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llamada al motor de búsqueda: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leer respuesta del motor de búsqueda: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		for _, s := range tolerados {
			if resp.StatusCode == s {
				return respBody, nil
			}
		}
		c.log.Error().Int("status", resp.StatusCode).Str("url", url).Msg("el motor de búsqueda respondió con error")
		return nil, fmt.Errorf("el motor de búsqueda respondió %d: %s", resp.StatusCode, recortar(respBody, 200))
	}
	return respBody, nil
}

func recortar(b []byte, max int) string {
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

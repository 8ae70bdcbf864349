package valorant

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://api.henrikdev.xyz"

// Client acessa a API HenrikDev de Valorant
type Client struct {
	BaseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient cria um cliente da API. apiKey pode ser vazio (rate limit menor).
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d for %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// GetAccount busca uma conta por Riot ID (name#tag)
func (c *Client) GetAccount(name, tag string) (*Account, error) {
	path := fmt.Sprintf("/valorant/v1/account/%s/%s", url.PathEscape(name), url.PathEscape(tag))
	var body struct {
		Data *Account `json:"data"`
	}
	if err := c.get(path, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, fmt.Errorf("account %s#%s not found", name, tag)
	}
	return body.Data, nil
}

// GetRecentMatches retorna as partidas mais recentes de um jogador
func (c *Client) GetRecentMatches(name, tag, region string) ([]Match, error) {
	path := fmt.Sprintf("/valorant/v3/matches/%s/%s/%s",
		url.PathEscape(region), url.PathEscape(name), url.PathEscape(tag))
	var body struct {
		Data []Match `json:"data"`
	}
	if err := c.get(path, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// LastMatch retorna a partida mais recente, ou nil se não houver dados
func (c *Client) LastMatch(name, tag, region string) (*Match, error) {
	matches, err := c.GetRecentMatches(name, tag, region)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

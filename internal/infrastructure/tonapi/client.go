package tonapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain/entity"
	"memescan/internal/infrastructure/upstream"
)

const (
	SourceName = "tonapi"

	verificationWhitelist = "whitelist"
)

type metadataSchema struct {
	Address  string         `json:"address"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	Decimals upstream.Float `json:"decimals"`
}

// jettonSchema ответ /jettons/{address}; он же элемент списка /jettons.
type jettonSchema struct {
	TotalSupply  upstream.Float `json:"total_supply"`
	Metadata     metadataSchema `json:"metadata"`
	Verification string         `json:"verification"`
	HoldersCount int            `json:"holders_count"`
}

func (s jettonSchema) toDomain(address string) entity.JettonMeta {
	if s.Metadata.Address != "" {
		address = s.Metadata.Address
	}

	return entity.JettonMeta{
		Address:     address,
		Symbol:      s.Metadata.Symbol,
		Name:        s.Metadata.Name,
		Decimals:    decimals(s.Metadata.Decimals),
		TotalSupply: s.TotalSupply.Or(0),
		HolderCount: s.HoldersCount,
		Verified:    s.Verification == verificationWhitelist,
	}
}

type holderSchema struct {
	Address string `json:"address"`
	Owner   struct {
		Address string `json:"address"`
	} `json:"owner"`
	Balance upstream.Float `json:"balance"`
}

type balanceSchema struct {
	Balance upstream.Float `json:"balance"`
	Jetton  struct {
		Address      string         `json:"address"`
		Name         string         `json:"name"`
		Symbol       string         `json:"symbol"`
		Decimals     upstream.Float `json:"decimals"`
		Verification string         `json:"verification"`
	} `json:"jetton"`
}

type eventSchema struct {
	EventID    string `json:"event_id"`
	Timestamp  int64  `json:"timestamp"`
	IsScam     bool   `json:"is_scam"`
	InProgress bool   `json:"in_progress"`
	Actions    []struct {
		Type string `json:"type"`
	} `json:"actions"`
}

// Client адаптер TonAPI. Ключ API, если задан, уходит Bearer-заголовком
// (см. upstream.Config.BearerToken).
type Client struct {
	api *upstream.Client
}

func New(api *upstream.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Jettons(ctx context.Context, limit, offset int) ([]entity.JettonMeta, error) {
	var envelope struct {
		Jettons []jsoniter.RawMessage `json:"jettons"`
	}

	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}

	if err := c.api.Get(ctx, "/jettons", query, &envelope); err != nil {
		return nil, fmt.Errorf("tonapi.Jettons: %w", err)
	}

	schemas := upstream.DecodeList[jettonSchema](ctx, SourceName, envelope.Jettons)
	jettons := make([]entity.JettonMeta, 0, len(schemas))

	for _, s := range schemas {
		jettons = append(jettons, s.toDomain(""))
	}

	return jettons, nil
}

func (c *Client) JettonMeta(ctx context.Context, address string) (*entity.JettonMeta, error) {
	var schema jettonSchema

	if err := c.api.Get(ctx, "/jettons/"+address, nil, &schema); err != nil {
		return nil, fmt.Errorf("tonapi.JettonMeta: %w", err)
	}

	meta := schema.toDomain(address)

	return &meta, nil
}

func (c *Client) Holders(ctx context.Context, address string, limit int) (entity.HolderPage, error) {
	var envelope struct {
		Addresses []jsoniter.RawMessage `json:"addresses"`
		Total     int                   `json:"total"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}

	if err := c.api.Get(ctx, "/jettons/"+address+"/holders", query, &envelope); err != nil {
		return entity.HolderPage{}, fmt.Errorf("tonapi.Holders: %w", err)
	}

	schemas := upstream.DecodeList[holderSchema](ctx, SourceName, envelope.Addresses)
	holders := make([]entity.Holder, 0, len(schemas))

	for _, s := range schemas {
		holders = append(holders, entity.Holder{
			Address: s.Address,
			Owner:   s.Owner.Address,
			Balance: s.Balance.Or(0),
		})
	}

	return entity.HolderPage{Holders: holders, Total: envelope.Total}, nil
}

func (c *Client) AccountJettons(ctx context.Context, account string) ([]entity.JettonBalance, error) {
	var envelope struct {
		Balances []jsoniter.RawMessage `json:"balances"`
	}

	if err := c.api.Get(ctx, "/accounts/"+account+"/jettons", nil, &envelope); err != nil {
		return nil, fmt.Errorf("tonapi.AccountJettons: %w", err)
	}

	schemas := upstream.DecodeList[balanceSchema](ctx, SourceName, envelope.Balances)
	balances := make([]entity.JettonBalance, 0, len(schemas))

	for _, s := range schemas {
		balances = append(balances, entity.JettonBalance{
			Jetton:   s.Jetton.Address,
			Symbol:   s.Jetton.Symbol,
			Name:     s.Jetton.Name,
			Decimals: decimals(s.Jetton.Decimals),
			Balance:  s.Balance.Or(0),
			Verified: s.Jetton.Verification == verificationWhitelist,
		})
	}

	return balances, nil
}

func (c *Client) AccountEvents(ctx context.Context, account string, limit int) ([]entity.AccountEvent, error) {
	var envelope struct {
		Events []jsoniter.RawMessage `json:"events"`
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}

	if err := c.api.Get(ctx, "/accounts/"+account+"/events", query, &envelope); err != nil {
		return nil, fmt.Errorf("tonapi.AccountEvents: %w", err)
	}

	schemas := upstream.DecodeList[eventSchema](ctx, SourceName, envelope.Events)
	events := make([]entity.AccountEvent, 0, len(schemas))

	for _, s := range schemas {
		actions := make([]string, 0, len(s.Actions))
		for _, a := range s.Actions {
			actions = append(actions, a.Type)
		}

		events = append(events, entity.AccountEvent{
			EventID:    s.EventID,
			Timestamp:  time.Unix(s.Timestamp, 0).UTC(),
			Actions:    actions,
			IsScam:     s.IsScam,
			InProgress: s.InProgress,
		})
	}

	return events, nil
}

func (c *Client) Close() {
	c.api.Close()
}

func decimals(f upstream.Float) int {
	if !f.Valid || f.Value < 0 {
		return entity.DefaultDecimals
	}

	return int(f.Value)
}

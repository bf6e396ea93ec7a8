package polygonscan

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/nexusagency/nexus-scheduler/pkg/explorer"
)

const defaultEndpoint = "https://api.polygonscan.com/api"

type txRecord struct {
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	TokenDecimal string `json:"tokenDecimal"`
	BlockNumber  string `json:"blockNumber"`
}

type txResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Result  []txRecord `json:"result"`
}

// Client lists ERC-20 token transfers through the polygonscan account API.
type Client struct {
	cli      *resty.Client
	endpoint string
	apiKey   string
}

func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	cli := resty.New()
	cli = cli.SetTimeout(15 * time.Second)
	return &Client{
		cli:      cli,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

func (c *Client) ListTransfers(ctx context.Context, address string, sinceHeight uint64) ([]*explorer.Transfer, error) {
	resp, err := c.cli.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"module":     "account",
			"action":     "tokentx",
			"address":    address,
			"startblock": strconv.FormatUint(sinceHeight, 10),
			"endblock":   "latest",
			"sort":       "asc",
			"apikey":     c.apiKey,
		}).
		Get(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("fail list transfers %v: %v", address, err)
	}

	body := txResponse{}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("fail parse transfers %v: %v", address, err)
	}
	// Status "0" with "No transactions found" is an empty window, not an error.
	if body.Status != "1" && !strings.Contains(body.Message, "No transactions") {
		return nil, fmt.Errorf("fail list transfers %v: %v", address, body.Message)
	}

	transfers := []*explorer.Transfer{}
	for _, record := range body.Result {
		if !strings.EqualFold(record.To, address) {
			continue
		}
		raw, err := decimal.NewFromString(record.Value)
		if err != nil {
			return nil, fmt.Errorf("fail parse value %v: %v", record.Value, err)
		}
		decimals, err := strconv.ParseInt(record.TokenDecimal, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("fail parse decimals %v: %v", record.TokenDecimal, err)
		}
		height, err := strconv.ParseUint(record.BlockNumber, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fail parse block %v: %v", record.BlockNumber, err)
		}
		transfers = append(transfers, &explorer.Transfer{
			TxID:        record.Hash,
			Amount:      raw.Shift(int32(-decimals)),
			From:        record.From,
			To:          record.To,
			BlockHeight: height,
		})
	}
	return transfers, nil
}

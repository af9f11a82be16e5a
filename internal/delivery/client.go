package delivery

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
	"github.com/kazakovdmitriy/go-gameserver-agent/internal/signer"
)

const requestTimeout = 5 * time.Second

// Client подписывает и отправляет события на endpoint приема.
type Client struct {
	url        string
	signer     *signer.HMACSigner
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
}

// NewClient создает клиента доставки. Пустой секрет допустим на этапе
// создания: без него каждая отправка завершается неудачей и событие
// уходит в очередь, пока оператор не исправит конфигурацию.
func NewClient(url, key string, log *zap.Logger) *Client {
	url = normalizeURL(url)

	var s *signer.HMACSigner
	if key != "" {
		s = signer.NewHMACSigner(key)
	}

	return &Client{
		url:    url,
		signer: s,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
		now: time.Now,
	}
}

// normalizeURL нормализует URL
func normalizeURL(url string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, ":") {
		url = "localhost" + url
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

// Send сериализует событие канонически, подписывает те же байты
// и выполняет запрос. Любой сбой - недоставка, не фатальная ошибка.
func (c *Client) Send(ctx context.Context, e model.Event) bool {
	if c.url == "" {
		c.log.Warn("ingest URL not set; treating send as failed")
		return false
	}
	if c.signer == nil {
		c.log.Warn("signing secret not set; treating send as failed")
		return false
	}

	body, err := e.MarshalCanonical()
	if err != nil {
		c.log.Error("failed to encode event", zap.Error(err))
		return false
	}

	ts := strconv.FormatInt(c.now().Unix(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.Error("failed to create request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signer.SignatureHeader, c.signer.Sign(body, ts))
	req.Header.Set(signer.TimestampHeader, ts)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("ingest request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		c.log.Warn("ingest rejected event",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return false
	}

	c.log.Debug("event delivered", zap.String("event", string(e.Event)))
	return true
}

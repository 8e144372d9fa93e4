package prices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/langchou/evcompare/internal/models"
	"github.com/langchou/evcompare/internal/monitoring"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNotConfigured 未配置价格来源
	ErrNotConfigured = errors.New("price source not configured")
	// ErrIncomplete 页面中缺少某项价格
	ErrIncomplete = errors.New("price table incomplete")
)

// 表格行关键字 (意大利语与英语)
var (
	petrolKeywords      = []string{"benzina", "petrol", "gasoline"}
	dieselKeywords      = []string{"gasolio", "diesel"}
	electricityKeywords = []string{"energia", "elettric", "electricity", "kwh"}
)

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Options 客户端配置
type Options struct {
	FuelURL        string
	ElectricityURL string // 为空时电价也从 FuelURL 页面读取
	RequestsPerSec float64
	CacheTTL       time.Duration
	Timeout        time.Duration
}

// Client 参考价格抓取客户端
type Client struct {
	fuelURL        string
	electricityURL string
	httpClient     *http.Client
	limiter        *rate.Limiter
	cache          *expirable.LRU[string, Parsed]
	logger         *zap.Logger
}

// Parsed 单个页面解析出的价格，未找到的项为 nil
type Parsed struct {
	Petrol      *float64
	Diesel      *float64
	Electricity *float64
}

// NewClient 创建价格客户端
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		fuelURL:        opts.FuelURL,
		electricityURL: opts.ElectricityURL,
		httpClient:     &http.Client{Timeout: opts.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		cache:          expirable.NewLRU[string, Parsed](16, nil, opts.CacheTTL),
		logger:         logger,
	}
}

// IsConfigured 是否配置了价格来源
func (c *Client) IsConfigured() bool {
	return c.fuelURL != ""
}

// Source 价格来源描述
func (c *Client) Source() string {
	if c.electricityURL == "" {
		return c.fuelURL
	}
	return c.fuelURL + " + " + c.electricityURL
}

// Fetch 抓取当前参考价格，三项价格必须齐全
func (c *Client) Fetch(ctx context.Context) (models.PriceTable, error) {
	if !c.IsConfigured() {
		return models.PriceTable{}, ErrNotConfigured
	}

	fuel, err := c.page(ctx, c.fuelURL)
	if err != nil {
		return models.PriceTable{}, err
	}

	electricity := fuel.Electricity
	if c.electricityURL != "" {
		ep, err := c.page(ctx, c.electricityURL)
		if err != nil {
			return models.PriceTable{}, err
		}
		electricity = ep.Electricity
	}

	var missing []string
	if fuel.Petrol == nil {
		missing = append(missing, "petrol")
	}
	if fuel.Diesel == nil {
		missing = append(missing, "diesel")
	}
	if electricity == nil {
		missing = append(missing, "electricity")
	}
	if len(missing) > 0 {
		return models.PriceTable{}, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	prices := models.PriceTable{
		PetrolPerLiter: *fuel.Petrol,
		DieselPerLiter: *fuel.Diesel,
		ElectricPerKWh: *electricity,
	}
	c.logger.Debug("Fetched reference prices",
		zap.Float64("petrol", prices.PetrolPerLiter),
		zap.Float64("diesel", prices.DieselPerLiter),
		zap.Float64("electricity", prices.ElectricPerKWh))

	return prices, nil
}

// ClearCache 清空缓存，下次 Fetch 强制请求
func (c *Client) ClearCache() {
	c.cache.Purge()
}

func (c *Client) page(ctx context.Context, pageURL string) (Parsed, error) {
	if parsed, ok := c.cache.Get(pageURL); ok {
		monitoring.RecordCacheHit("price_page")
		return parsed, nil
	}
	monitoring.RecordCacheMiss("price_page")

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return Parsed{}, fmt.Errorf("wait for rate limiter: %w", err)
	}
	monitoring.RecordRateLimitWait("price_source", time.Since(waitStart))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Parsed{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "evcompare/1.0 (reference price fetch)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Parsed{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Parsed{}, fmt.Errorf("price source returned status %d", resp.StatusCode)
	}

	parsed, err := ParseTable(resp.Body)
	if err != nil {
		return Parsed{}, err
	}

	c.cache.Add(pageURL, parsed)
	return parsed, nil
}

// ParseTable 从 HTML 表格中读取价格。每行第一个单元格是标签，其后第一个数字是价格
func ParseTable(r io.Reader) (Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("parse html: %w", err)
	}

	var out Parsed
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))

		var value *float64
		cells.Slice(1, cells.Length()).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if v, ok := ParseDecimal(cell.Text()); ok {
				value = &v
				return false
			}
			return true
		})
		if value == nil {
			return
		}

		switch {
		case out.Petrol == nil && containsAny(label, petrolKeywords):
			out.Petrol = value
		case out.Diesel == nil && containsAny(label, dieselKeywords):
			out.Diesel = value
		case out.Electricity == nil && containsAny(label, electricityKeywords):
			out.Electricity = value
		}
	})

	return out, nil
}

// ParseDecimal 解析文本中的第一个数字，接受小数逗号 ("1,789 €/l")
func ParseDecimal(s string) (float64, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Package catalogfake serves an in-memory storefront catalog over HTTP using
// the same routes and response envelope as the real API. It backs the client
// tests and the `vitrine demo` command.
package catalogfake

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/five82/vitrine/internal/catalog"
)

// APIPrefix is the path prefix the fake mounts its routes under.
const APIPrefix = "/api/v1"

// Server is an in-memory catalog. The zero value is not usable; call New.
type Server struct {
	mu         sync.Mutex
	products   []catalog.Product
	categories []catalog.Category
	requests   []url.Values
	failNext   int
	latency    time.Duration

	engine *gin.Engine
}

type response struct {
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Error   bool                `json:"error,omitempty"`
	Meta    *catalog.Pagination `json:"meta"`
}

// New builds a fake catalog holding the given products and category tree.
func New(products []catalog.Product, categories []catalog.Category) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		products:   append([]catalog.Product(nil), products...),
		categories: append([]catalog.Category(nil), categories...),
	}

	r := gin.New()
	// Route on the escaped path so ids containing "/" stay one segment.
	r.UseRawPath = true
	r.Use(gin.Recovery(), s.intercept)

	store := r.Group(APIPrefix + "/store")
	{
		store.GET("/products", s.listProducts)
		store.GET("/products/:id", s.getProduct)
		store.GET("/categories", s.listCategories)
		store.GET("/filters/metadata", s.filterMetadata)
	}
	s.engine = r
	return s
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetProduct inserts or replaces a product by id.
func (s *Server) SetProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}

// Requests returns the query strings of every product listing request served
// so far, oldest first.
func (s *Server) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

// FailNext makes the next n requests fail with a 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// SetLatency delays every response by d, or until the request is cancelled.
func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

func (s *Server) intercept(c *gin.Context) {
	s.mu.Lock()
	if strings.HasSuffix(c.Request.URL.Path, "/store/products") {
		s.requests = append(s.requests, c.Request.URL.Query())
	}
	fail := s.failNext > 0
	if fail {
		s.failNext--
	}
	latency := s.latency
	s.mu.Unlock()

	if latency > 0 {
		if err := sleep(c.Request.Context(), latency); err != nil {
			c.Abort()
			return
		}
	}
	if fail {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response{Message: "Internal server error", Error: true})
		return
	}
	c.Next()
}

func (s *Server) listProducts(c *gin.Context) {
	page, limit := parsePagination(c)

	s.mu.Lock()
	matched := s.filter(c)
	s.mu.Unlock()

	sortProducts(matched, c.DefaultQuery("sortBy", "newest"), c.DefaultQuery("sortOrder", "desc"))

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	results := make([]catalog.Product, 0, end-start)
	for _, p := range matched[start:end] {
		results = append(results, thin(p))
	}

	c.JSON(http.StatusOK, response{
		Message: "Products fetched successfully",
		Data:    results,
		Meta: &catalog.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	})
}

func (s *Server) getProduct(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			c.JSON(http.StatusOK, response{Message: "Product fetched successfully", Data: p})
			return
		}
	}
	c.JSON(http.StatusNotFound, response{Message: "Product not found", Error: true})
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, response{Message: "Categories fetched successfully", Data: s.countedCategories()})
}

func (s *Server) filterMetadata(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := catalog.FilterMetadata{
		Availability: &catalog.Availability{},
		Categories:   s.countedCategories(),
	}
	for i, p := range s.products {
		if strings.EqualFold(p.Status, "out of stock") {
			meta.Availability.OutOfStock++
		} else {
			meta.Availability.InStock++
		}
		if i == 0 {
			meta.PriceRange = &catalog.PriceRange{Min: p.Price, Max: p.Price}
			continue
		}
		meta.PriceRange.Min = decimal.Min(meta.PriceRange.Min, p.Price)
		meta.PriceRange.Max = decimal.Max(meta.PriceRange.Max, p.Price)
	}
	c.JSON(http.StatusOK, response{Message: "Filter metadata fetched successfully", Data: meta})
}

// filter must be called with s.mu held.
func (s *Server) filter(c *gin.Context) []catalog.Product {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	category := s.categoryName(strings.TrimSpace(c.Query("category")))
	subs := c.QueryArray("subcategory")
	minPrice, hasMin := parseDecimal(c.Query("minPrice"))
	maxPrice, hasMax := parseDecimal(c.Query("maxPrice"))

	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if category != "" && !strings.EqualFold(p.CategoryName, category) {
			continue
		}
		if len(subs) > 0 && !contains(subs, p.SubCategoryID) {
			continue
		}
		if hasMin && p.Price.LessThan(minPrice) {
			continue
		}
		if hasMax && p.Price.GreaterThan(maxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// categoryName accepts either a parent category id or its name.
func (s *Server) categoryName(value string) string {
	for _, cat := range s.categories {
		if cat.ID == value {
			return cat.Name
		}
	}
	return value
}

func (s *Server) countedCategories() []catalog.Category {
	out := make([]catalog.Category, len(s.categories))
	for i, parent := range s.categories {
		parent.ProductCount = 0
		subs := make([]catalog.Category, len(parent.Subcategories))
		for j, sub := range parent.Subcategories {
			sub.ProductCount = 0
			for _, p := range s.products {
				if p.SubCategoryID == sub.ID {
					sub.ProductCount++
				}
			}
			subs[j] = sub
		}
		for _, p := range s.products {
			if strings.EqualFold(p.CategoryName, parent.Name) {
				parent.ProductCount++
			}
		}
		parent.Subcategories = subs
		out[i] = parent
	}
	return out
}

func sortProducts(products []catalog.Product, sortBy, sortOrder string) {
	asc := strings.EqualFold(sortOrder, "asc")
	less := func(i, j int) bool {
		a, b := products[i], products[j]
		switch sortBy {
		case "price":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price) == asc
			}
		case "name":
			if a.Name != b.Name {
				return (a.Name < b.Name) == asc
			}
		case "rating":
			if a.Rating != b.Rating {
				return (a.Rating < b.Rating) == asc
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt) == asc
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(products, less)
}

// thin strips detail-only fields the way the storefront listing does.
func thin(p catalog.Product) catalog.Product {
	return catalog.Product{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Image:         p.Image,
		CategoryName:  p.CategoryName,
		SubCategoryID: p.SubCategoryID,
		Rating:        p.Rating,
	}
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "12"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 12
	}
	return page, limit
}

func parseDecimal(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

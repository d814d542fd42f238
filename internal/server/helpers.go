package server

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize    = 10
	maxPaginationLimit = 100
)

// Pagination holds the parsed page/limit query parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePagination reads the 1-based page number and page size.
func (s *Server) parsePagination(c *fiber.Ctx) Pagination {
	defaultLimit, maxLimit := defaultPageSize, maxPaginationLimit
	if s.config != nil {
		if s.config.PageSize > 0 {
			defaultLimit = s.config.PageSize
		}
		if s.config.MaxPageSize > 0 {
			maxLimit = s.config.MaxPageSize
		}
	}

	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	// Keeps (page-1)*limit inside a 32-bit offset.
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// paginate wraps one page of results with absolute next/previous links.
func paginate[T any](c *fiber.Ctx, p Pagination, results []T, count int64) Page[T] {
	if results == nil {
		results = []T{}
	}
	out := Page[T]{Count: count, Results: results}
	if int64(p.Offset+len(results)) < count {
		next := pageURL(c, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *fiber.Ctx, page int) string {
	values := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	if page <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(page))
	}

	link := c.BaseURL() + c.Path()
	if q := values.Encode(); q != "" {
		link += "?" + q
	}
	return link
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Resource", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dest, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// currentUserID returns the authenticated user, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// queryFlag reports whether a boolean filter such as is_favorited=1 is set.
func queryFlag(c *fiber.Ctx, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}

// parsePositiveID parses a positive 32-bit id from a query value.
func parsePositiveID(key, raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, models.NewValidationError(fmt.Sprintf("%s: invalid id %q", key, raw))
	}
	return uint(n), nil
}

// queryUints collects every value of a repeatable key. Any value that is not
// a positive integer fails the whole set.
func queryUints(c *fiber.Ctx, key string) ([]uint, error) {
	var (
		out      []uint
		firstErr error
	)
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		if string(k) != key || firstErr != nil {
			return
		}
		n, err := parsePositiveID(key, string(v))
		if err != nil {
			firstErr = err
			return
		}
		out = append(out, n)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseLimitOffset — пагинация из query. limit приводится к [1, maxLimit]
// (без параметра — defaultLimit), offset не меньше 0. Нечисловое значение
// равносильно отсутствию параметра.
func ParseLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = queryInt(c, "limit", defaultLimit)
	offset = queryInt(c, "offset", 0)
	return min(max(limit, 1), maxLimit), max(offset, 0)
}

func queryInt(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

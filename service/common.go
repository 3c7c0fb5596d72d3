package service

import (
	"errors"
	"strconv"

	"solarops/middleware"
	"solarops/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// uintParam parses a numeric path parameter. Responds with 400 and
// returns false when the segment is not a positive integer.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		response.BadRequestError(c, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(v), true
}

// actorID returns the authenticated actor's user ID for audit entries.
func actorID(c *gin.Context) uint {
	return middleware.GetActor(c).UserID
}

// dbError maps a storage failure onto the response envelope. Lookup
// misses become 404, everything else surfaces the raw message.
func dbError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFoundError(c, "record not found")
		return
	}
	response.Error(c, err.Error(), response.NotSpecified)
}

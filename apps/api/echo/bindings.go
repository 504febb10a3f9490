package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/formazione/core/schedule"
)

// bindIDSet reads the ids of a query param given repeated (?id=1&id=2), comma separated (?id=1,2) or both.
func bindIDSet(ctx echo.Context, param string) schedule.IDSet {
	ids := schedule.IDSet{}
	for _, val := range ctx.QueryParams()[param] {
		for _, id := range strings.Split(val, ",") {
			ids = ids.Add(schedule.ID(strings.TrimSpace(id)))
		}
	}
	return ids
}

func bindScheduleID(ctx echo.Context) (schedule.ID, error) {
	id := schedule.ID(strings.TrimSpace(ctx.Param("id")))
	if id.IsZero() {
		return "", errHttpNotFound
	}
	return id, nil
}

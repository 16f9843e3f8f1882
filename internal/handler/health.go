package handler // declare the package name; contains HTTP handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-room-allocation/internal/allocator"
)

// Health is the liveness probe used by load balancers.  It returns a plain
// text "ok".
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Status reports service health together with a short occupancy summary.
func Status(engine *allocator.Engine, persistence bool) echo.HandlerFunc {
    return func(c echo.Context) error {
        st := engine.Stats()
        return c.JSON(http.StatusOK, echo.Map{
            "status":      "ok",
            "rooms":       st.Total,
            "occupied":    st.Occupied,
            "persistence": persistence,
        })
    }
}

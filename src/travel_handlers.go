package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tbs/src/lib"
	"tbs/src/types"
	"tbs/src/utils"

	"github.com/gin-gonic/gin"
)

func travelHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/travel", func(ctx *gin.Context) {
			var filters types.TravelQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			travels, err := utils.SearchTravel(&filters)
			if err != nil {
				ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			now := time.Now()
			data := make([]*types.APIResponseTravelOption, 0, len(travels))
			for i := range travels {
				data = append(data, travels[i].APIResponse(now))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/travel/:id", func(ctx *gin.Context) {
			var params types.TravelURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if cached, ok := lib.GetCachedTravelView(ctx.Request.Context(), params.TravelID); ok {
				ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
				return
			}
			travel, err := utils.GetTravel(params.TravelID)
			if err != nil {
				ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			body, err := json.Marshal(gin.H{"data": travel.APIResponse(time.Now())})
			if err != nil {
				log.Printf("Error serializing travel %s: %s\n", params.TravelID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			go lib.CacheTravelView(context.Background(), params.TravelID, body)
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		})
	return g
}

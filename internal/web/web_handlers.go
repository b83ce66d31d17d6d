package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkbrowse/parkbrowse/internal/browser"
	"github.com/pkg/errors"
)

func getServers(serverBrowser *browser.Browser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		servers := serverBrowser.Servers()
		if servers == nil {
			responseOK(ctx, http.StatusOK, nil)

			return
		}

		responseOK(ctx, http.StatusOK, servers)
	}
}

func getStats(serverBrowser *browser.Browser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		responseOK(ctx, http.StatusOK, serverBrowser.Stats())
	}
}

type refreshResponse struct {
	LocalCount  int    `json:"local_count"`
	RemoteCount int    `json:"remote_count"`
	LocalError  string `json:"local_error,omitempty"`
	RemoteError string `json:"remote_error,omitempty"`
}

func postRefresh(serverBrowser *browser.Browser) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		summary := serverBrowser.Refresh(ctx.Request.Context())

		resp := refreshResponse{
			LocalCount:  summary.LocalCount,
			RemoteCount: summary.RemoteCount,
		}

		if summary.LocalErr != nil {
			resp.LocalError = summary.LocalErr.Error()
		}

		if summary.RemoteErr != nil {
			resp.RemoteError = summary.RemoteErr.Error()
		}

		responseOK(ctx, http.StatusOK, resp)
	}
}

func updateFavourite(serverBrowser *browser.Browser, favourite bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		address := ctx.Param("address")

		if errSet := serverBrowser.SetFavourite(address, favourite); errSet != nil {
			if errors.Is(errSet, browser.ErrUnknownServer) {
				responseErr(ctx, http.StatusNotFound, gin.H{"error": "Unknown server address"})

				return
			}

			responseErr(ctx, http.StatusInternalServerError, gin.H{"error": "Failed to save favourites"})

			return
		}

		responseOK(ctx, http.StatusOK, gin.H{"address": address, "favourite": favourite})
	}
}

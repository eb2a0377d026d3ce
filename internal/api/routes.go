package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)

		api.GET("/quotes", h.listQuotes)
		api.POST("/quotes", h.uploadQuotes)
		api.POST("/quotes/text", h.quotesFromText)
		api.POST("/quotes/nav", h.navigate)

		api.GET("/backgrounds", h.listBackgrounds)
		api.POST("/backgrounds", h.uploadBackgrounds)
		api.POST("/backgrounds/url", h.importBackground)
		api.DELETE("/backgrounds", h.clearBackgrounds)
		api.DELETE("/backgrounds/:index", h.removeBackground)
		api.POST("/backgrounds/:index/select", h.selectBackground)
		api.GET("/backgrounds/:index/thumbnail", h.backgroundThumbnail)

		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.putSettings)
		api.POST("/settings/preset", h.applyPreset)
		api.POST("/settings/reset-effects", h.resetEffects)
		api.GET("/settings/export", h.exportSettings)
		api.GET("/naming", h.getNaming)
		api.PUT("/naming", h.putNaming)
		api.GET("/preferences", h.getPreferences)
		api.PUT("/preferences", h.putPreferences)

		api.GET("/preview", h.preview)
		api.POST("/render", h.render)
		api.GET("/current", h.current)

		api.POST("/generate", h.startGenerate)
		api.GET("/generate", h.generateStatus)
		api.POST("/generate/pause", h.pause)
		api.POST("/generate/resume", h.resume)
		api.POST("/generate/cancel", h.cancel)
		api.POST("/generate/retry", h.retry)

		api.GET("/images", h.listImages)
		api.GET("/images/:n", h.image)
		api.GET("/archive", h.archive)
	}
}

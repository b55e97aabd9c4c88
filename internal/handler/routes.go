package handler

import (
	"github.com/drakeos/drakeos/internal/events"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Register mounts every API route on r.
func Register(r gin.IRouter, state *State, bus *events.Broadcaster, logger *zap.Logger) {
	treeHandler := NewTreeHandler(state)
	desktopHandler := NewDesktopHandler(state)
	windowHandler := NewWindowHandler(state)
	shellHandler := NewShellHandler(state)
	musicHandler := NewMusicHandler(state)
	wsHandler := NewWSHandler(bus, logger)

	api := r.Group("/api")
	{
		// Tree APIs
		api.GET("/tree", treeHandler.GetTree)
		api.GET("/nodes/*path", treeHandler.GetNode)

		// Navigation APIs
		api.GET("/desktop", desktopHandler.GetDesktop)
		api.POST("/navigate", desktopHandler.Navigate)
		api.POST("/up", desktopHandler.GoUp)
		api.POST("/home", desktopHandler.GoHome)
		api.POST("/hidden", desktopHandler.ToggleHidden)
		api.POST("/activate", desktopHandler.Activate)
		api.POST("/music", desktopHandler.OpenMusicPlayer)
		api.GET("/console", desktopHandler.GetConsole)

		// Music APIs
		api.GET("/music", musicHandler.GetMusic)
		api.POST("/music/toggle", musicHandler.Toggle)
		api.POST("/music/next", musicHandler.Next)
		api.POST("/music/prev", musicHandler.Prev)
		api.POST("/music/ended", musicHandler.Ended)
		api.PUT("/music/volume", musicHandler.SetVolume)

		// Window APIs
		api.GET("/windows", windowHandler.ListWindows)
		api.POST("/windows", windowHandler.OpenWindow)
		api.DELETE("/windows", windowHandler.CloseAll)
		api.DELETE("/windows/*path", windowHandler.CloseWindow)
		api.POST("/windows/focus", windowHandler.Focus)
		api.PUT("/windows/geometry", windowHandler.UpdateGeometry)
		api.GET("/views/*path", windowHandler.GetView)

		// Shell APIs
		api.POST("/shell", shellHandler.Execute)
		api.GET("/shell/history", shellHandler.GetHistory)
		api.POST("/shell/history/up", shellHandler.HistoryUp)
		api.POST("/shell/history/down", shellHandler.HistoryDown)

		api.GET("/ws", wsHandler.HandleWS)
	}
}

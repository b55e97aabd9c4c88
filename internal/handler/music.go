package handler

import (
	"net/http"

	"github.com/drakeos/drakeos/internal/audio"
	"github.com/drakeos/drakeos/internal/desktop"
	"github.com/gin-gonic/gin"
)

// MusicResponse is the player state after a control request
type MusicResponse struct {
	Current *audio.NowPlaying `json:"current,omitempty"`
	Playing bool              `json:"playing"`
	Volume  float64           `json:"volume"`
}

// VolumeRequest sets the player volume, clamped to [0, 1]
type VolumeRequest struct {
	Level *float64 `json:"level"`
}

// MusicHandler drives the shared audio player
type MusicHandler struct {
	state *State
}

// NewMusicHandler creates a new music handler
func NewMusicHandler(state *State) *MusicHandler {
	return &MusicHandler{state: state}
}

func musicState(p *audio.Player) MusicResponse {
	resp := MusicResponse{
		Playing: p.IsPlaying(),
		Volume:  p.Volume(),
	}
	if cur, ok := p.Current(); ok {
		resp.Current = &cur
	}
	return resp
}

// control runs op on the player and answers with the resulting state.
func (h *MusicHandler) control(c *gin.Context, op func(*audio.Player)) {
	h.state.with(c, func(d *desktop.Desktop) {
		p := d.Player()
		op(p)
		c.JSON(http.StatusOK, musicState(p))
	})
}

// GetMusic returns the player state
func (h *MusicHandler) GetMusic(c *gin.Context) {
	h.control(c, func(*audio.Player) {})
}

// Toggle switches between playing and paused
func (h *MusicHandler) Toggle(c *gin.Context) {
	h.control(c, (*audio.Player).Toggle)
}

// Next skips to the next track, wrapping at the end
func (h *MusicHandler) Next(c *gin.Context) {
	h.control(c, (*audio.Player).Next)
}

// Prev goes back one track, wrapping at the start
func (h *MusicHandler) Prev(c *gin.Context) {
	h.control(c, (*audio.Player).Prev)
}

// Ended is reported by the front end when a track finishes playing
func (h *MusicHandler) Ended(c *gin.Context) {
	h.control(c, (*audio.Player).Ended)
}

// SetVolume updates the volume
func (h *MusicHandler) SetVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Level == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "level is required",
		})
		return
	}
	h.control(c, func(p *audio.Player) { p.SetVolume(*req.Level) })
}

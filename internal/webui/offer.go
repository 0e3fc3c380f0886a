package webui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/steerctl/internal/observability"
)

// StreamRequest is the body the stream daemon expects on POST /stream. The
// camera list and bridged service names are fixed for the steering page.
type StreamRequest struct {
	SDP               string   `json:"sdp"`
	Cameras           []string `json:"cameras"`
	BridgeServicesIn  []string `json:"bridge_services_in"`
	BridgeServicesOut []string `json:"bridge_services_out"`
}

type browserOffer struct {
	SDP  string `json:"sdp"`
	Type string `json:"type"`
}

func newStreamRequest(sdp string) StreamRequest {
	return StreamRequest{
		SDP:               sdp,
		Cameras:           []string{"road", "driver"},
		BridgeServicesIn:  []string{"testJoystick"},
		BridgeServicesOut: []string{"carState"},
	}
}

// handleOffer relays one WebRTC offer to the stream daemon and hands the
// answer back untouched. Upstream failures surface as 500 with the upstream
// text so the page can show them.
func (s *Server) handleOffer(c *gin.Context) {
	var offer browserOffer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := json.Marshal(newStreamRequest(offer.SDP))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	upstream := fmt.Sprintf("http://%s/stream", s.cfg.WebrtcdAddr)
	start := time.Now()

	resp, err := s.proxy.Post(upstream, "application/json", bytes.NewReader(payload))
	if err != nil {
		observability.RecordOfferProxy(serviceName, upstream, 0, time.Since(start), false)
		log.Error().Str("upstream", upstream).Err(err).Msg("offer proxy failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordOfferProxy(serviceName, upstream, resp.StatusCode, time.Since(start), false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if resp.StatusCode != http.StatusOK {
		observability.RecordOfferProxy(serviceName, upstream, resp.StatusCode, time.Since(start), false)
		log.Error().Str("upstream", upstream).Int("status", resp.StatusCode).
			Str("body", string(answer)).Msg("stream daemon rejected offer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": string(answer)})
		return
	}

	observability.RecordOfferProxy(serviceName, upstream, resp.StatusCode, time.Since(start), true)
	log.Info().Str("upstream", upstream).Dur("duration", time.Since(start)).Msg("offer answered")
	c.Data(http.StatusOK, "application/json", answer)
}

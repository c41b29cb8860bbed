package http

import (
	_ "embed"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geokshitij/flowData/internal/domain"
	"github.com/geokshitij/flowData/internal/store"
)

//go:embed index.html
var indexHTML []byte

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

type stationsRequest struct {
	State       string `form:"state" json:"state" binding:"required"`
	ParameterCd string `form:"parameter_cd" json:"parameter_cd"`
}

// handleStations resolves a state's gage list and returns the normalized
// station table as a CSV attachment. The station ID list and CSV export are
// also written to local storage as a side effect of resolution.
func (s *Server) handleStations(c *gin.Context) {
	var req stationsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state is required"})
		return
	}

	state := strings.ToUpper(strings.TrimSpace(req.State))
	if _, ok := states[state]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state code " + state})
		return
	}

	stations, err := s.resolver.Resolve(c.Request.Context(), state, req.ParameterCd)
	if err != nil {
		s.logger.Error("station resolution failed", "state", state, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if len(stations) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "no stations found for " + states[state]})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+state+`_stations_wgs84.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := store.WriteStationCSV(c.Writer, stations); err != nil {
		s.logger.Error("write station csv response", "error", err)
	}
}

type jobRequest struct {
	Sites       []string `form:"sites" json:"sites"`
	SitesText   string   `form:"sites_text" json:"sites_text"`
	Kinds       []string `form:"kinds" json:"kinds"`
	ParameterCd string   `form:"parameter_cd" json:"parameter_cd"`
	StartDate   string   `form:"start_date" json:"start_date"`
	EndDate     string   `form:"end_date" json:"end_date"`
	AllData     bool     `form:"all_data" json:"all_data"`
}

// handleCreateJob validates a job descriptor and registers it for a single
// consumption via the events endpoint. Invalid job shapes are rejected here,
// before any download step runs.
func (s *Server) handleCreateJob(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sites := req.Sites
	if len(sites) == 0 {
		sites = parseSiteList(req.SitesText)
	}

	kinds := make([]domain.Kind, len(req.Kinds))
	for i, k := range req.Kinds {
		kinds[i] = domain.Kind(k)
	}

	job, err := domain.NewJob(sites, kinds, req.ParameterCd, req.StartDate, req.EndDate, req.AllData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.jobs.Add(job)
	c.JSON(http.StatusCreated, gin.H{"id": id, "total_steps": job.TotalSteps()})
}

// handleJobEvents streams a registered job's progress events over SSE. The
// job is consumed by this call; a second connection to the same id gets 404.
// Client disconnect cancels the request context, which stops the producer.
func (s *Server) handleJobEvents(c *gin.Context) {
	job, ok := s.jobs.Take(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or already consumed job"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := s.runner.Run(c.Request.Context(), job)
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("message", ev)
		return true
	})
}

// parseSiteList splits newline-delimited station IDs, the same format as
// the stations.txt bridge artifact.
func parseSiteList(text string) []string {
	var sites []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sites = append(sites, line)
		}
	}
	return sites
}

// states is the fixed region enumeration accepted by the stations endpoint.
var states = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
}

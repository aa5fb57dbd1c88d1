package api

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jobmetrics/app"
	"jobmetrics/domain/core"
	"jobmetrics/internal/errors"
	"jobmetrics/internal/export"
	"jobmetrics/internal/jobs"

	"github.com/gin-gonic/gin"
)

// handleCreateReport builds a report from the multipart "file" field.
// With ?table=<key> the single table is returned as CSV.
func (s *Server) handleCreateReport(c *gin.Context) {
	if c.Request.ContentLength > s.maxUploadSize {
		writeError(c, http.StatusRequestEntityTooLarge, errors.InvalidInput(
			fmt.Sprintf("upload exceeds %d bytes", s.maxUploadSize)))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, errors.InvalidInput(
				fmt.Sprintf("upload exceeds %d bytes", s.maxUploadSize)))
			return
		}
		respondError(c, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	filter, err := filterFromRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := s.service.BuildReport(c.Request.Context(), app.ReportRequest{
		Filename: fh.Filename,
		Data:     data,
		Filter:   filter,
		Persist:  c.Query("persist") != "false",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if key := c.Query("table"); key != "" {
		t, ok := res.Report.Table(key)
		if !ok {
			respondError(c, errors.NotFound(fmt.Sprintf("table %q", key)))
			return
		}
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key+".csv"))
		c.Status(http.StatusOK)
		if err := export.EncodeCSV(c.Writer, t); err != nil {
			log.Printf("[API] Failed to stream %s.csv: %v", key, err)
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// handleListRuns lists runs newest first; ?hash= returns the latest run
// for one workbook instead.
func (s *Server) handleListRuns(c *gin.Context) {
	if hash := c.Query("hash"); hash != "" {
		rn, err := s.service.LatestRun(c.Request.Context(), core.Hash(hash))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rn)
		return
	}

	limit, err := intQuery(c, "limit", 50)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "limit": limit, "offset": offset})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	rn, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rn)
}

// filterFromRequest reads filter values from query or form fields. Each
// field may be repeated or hold a comma separated list.
func filterFromRequest(c *gin.Context) (jobs.Filter, error) {
	f := jobs.Filter{
		Months:         upperAll(listParam(c, "months")),
		JobTypes:       listParam(c, "job_types"),
		ClientTypes:    listParam(c, "client_types"),
		Channels:       listParam(c, "channels"),
		Statuses:       listParam(c, "statuses"),
		ClientContains: strings.TrimSpace(param(c, "client")),
	}
	for _, y := range listParam(c, "years") {
		year, err := strconv.Atoi(y)
		if err != nil {
			return jobs.Filter{}, errors.InvalidInput(fmt.Sprintf("invalid year %q", y))
		}
		f.Years = append(f.Years, year)
	}
	return f, nil
}

func param(c *gin.Context, key string) string {
	if v, ok := c.GetQuery(key); ok {
		return v
	}
	return c.PostForm(key)
}

func listParam(c *gin.Context, key string) []string {
	raw := c.QueryArray(key)
	if len(raw) == 0 {
		raw = c.PostFormArray(key)
	}
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func upperAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToUpper(v)
	}
	return values
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be a non-negative integer", key))
	}
	return n, nil
}

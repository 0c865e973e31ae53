package admin

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"procurely/common"
	"procurely/models"
)

const exportDateLayout = "2006-01-02"

var (
	contactColumns     = []string{"Name", "Email", "Phone", "Company", "Message", "Date"}
	applicationColumns = []string{"Name", "Email", "Phone", "Job Title", "Status", "Date", "Resume URL"}
)

// ContactRecords renders contact submissions as CSV records, header first.
func ContactRecords(rows []models.ContactSubmission) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, contactColumns)
	for _, r := range rows {
		records = append(records, []string{
			r.Name, r.Email, r.Phone, r.Company, r.Message,
			r.CreatedAt.Format(exportDateLayout),
		})
	}
	return records
}

// ApplicationRecords renders job applications as CSV records, header first.
// The job title is empty when the job was not loaded.
func ApplicationRecords(rows []models.JobApplication) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, applicationColumns)
	for _, r := range rows {
		title := ""
		if r.Job != nil {
			title = r.Job.Title
		}
		records = append(records, []string{
			r.Name, r.Email, r.Phone, title, r.Status,
			r.CreatedAt.Format(exportDateLayout), r.ResumeURL,
		})
	}
	return records
}

func (a *AdminModule) exportContacts(c *gin.Context) {
	q, err := common.ListQuery(c, contactFilters)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	q.Page, q.PageSize = 0, 0

	rows, _, err := a.stores.Contacts.List(c.Request.Context(), q)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	a.writeCSV(c, "contact-submissions", ContactRecords(rows))
}

func (a *AdminModule) exportApplications(c *gin.Context) {
	q, err := common.ListQuery(c, applicationFilters)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	q.Page, q.PageSize = 0, 0

	rows, _, err := a.stores.Applications.List(c.Request.Context(), q)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	a.writeCSV(c, "job-applications", ApplicationRecords(rows))
}

func (a *AdminModule) writeCSV(c *gin.Context, prefix string, records [][]string) {
	filename := fmt.Sprintf("%s-%s.csv", prefix, a.now().Format(exportDateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(records); err != nil {
		common.Logger(c).Sugar().Errorw("csv export failed", "file", filename, "error", err)
	}
}

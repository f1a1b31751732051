package course

import "time"

// Certificate is the issued-certificate view returned to a user; the object
// key itself is persisted on the EnrollmentRecord.
type Certificate struct {
	CourseID          uint      `json:"course_id"`
	CertificateNumber string    `json:"certificate_number"`
	URL               string    `json:"certificate_url"`
	IssuedAt          time.Time `json:"issued_at"`
}

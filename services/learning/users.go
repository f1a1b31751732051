package learning

import (
	"context"

	"devlaunch/database/dbctx"

	"gorm.io/gorm"
)

// RemoveUser deletes a user together with their enrollment records and takes
// each record's settled contribution back out of the course ledgers.
func (s *Service) RemoveUser(ctx context.Context, userID uint) error {
	var touched []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		recs, err := s.enrollments.DeleteByUser(dbc, userID)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := s.courses.ApplyDelta(dbc, rec.CourseID, -1, -int64(rec.LedgerProgress)); err != nil {
				return err
			}
			touched = append(touched, rec.CourseID)
		}
		return notFound(s.users.HardDelete(dbc, userID), "user not found")
	})
	if err != nil {
		return err
	}
	for _, id := range touched {
		s.refreshAverage(ctx, id)
	}
	s.log.Info("User removed", "userId", userID, "courses", len(touched))
	return nil
}

package views

import (
	"context"
	"fmt"
	"io"

	"github.com/infocampus/campus/authz"
	"github.com/infocampus/campus/services/academic"
	"github.com/infocampus/campus/session"
)

// DashboardSource is the part of the academic service the dashboards read
type DashboardSource interface {
	MyEnrollments(ctx context.Context) ([]academic.StudentEnrollment, error)
	TeacherDashboard(ctx context.Context) (*academic.TeacherDashboard, error)
	FinanceDashboard(ctx context.Context) (*academic.FinanceDashboard, error)
	InstitutionalDashboard(ctx context.Context) (*academic.InstitutionalDashboard, error)
}

// Dashboard renders the view chosen by authz.SelectDashboard for state. A
// student in arrears gets the blocked view and nothing is fetched. The
// dispatch result is returned so the caller can follow a redirect.
func Dashboard(ctx context.Context, w io.Writer, state session.State, src DashboardSource) (authz.Dispatch, error) {
	d := authz.SelectDashboard(state)
	if d.Suspend || d.ToLogin {
		return d, nil
	}

	p := state.Principal
	if d.View == authz.StudentView && p.IsBlocked() {
		Header(w, p)
		Blocked(w, p)
		return d, nil
	}

	Header(w, p)
	if err := renderView(ctx, w, d.View, src); err != nil {
		return d, err
	}
	fmt.Fprintln(w)
	RenderMenu(w, Menu(p.Role))
	return d, nil
}

func renderView(ctx context.Context, w io.Writer, view authz.View, src DashboardSource) error {
	switch view {
	case authz.StudentView:
		enrollments, err := src.MyEnrollments(ctx)
		if err != nil {
			return err
		}
		StudentDashboard(w, enrollments)
	case authz.TeacherView:
		dash, err := src.TeacherDashboard(ctx)
		if err != nil {
			return err
		}
		TeacherDashboard(w, dash)
	case authz.TreasurerView:
		dash, err := src.FinanceDashboard(ctx)
		if err != nil {
			return err
		}
		TreasurerDashboard(w, dash)
	case authz.DirectorView:
		dash, err := src.InstitutionalDashboard(ctx)
		if err != nil {
			return err
		}
		DirectorDashboard(w, dash)
	case authz.CoordinatorView:
		dash, err := src.InstitutionalDashboard(ctx)
		if err != nil {
			return err
		}
		CoordinatorDashboard(w, dash)
	default:
		return fmt.Errorf("unknown view %q", view)
	}
	return nil
}

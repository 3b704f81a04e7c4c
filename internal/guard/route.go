package guard

import (
	"strings"
)

// RouteClass is the derived category of a URL path, relative to the resolved
// agency slug, used to select authorization rules.
type RouteClass int

const (
	// RoutePublic covers the agency's public pages: home, listings, contact.
	// Rendered unconditionally so they stay crawlable and anonymous-accessible.
	RoutePublic RouteClass = iota
	// RouteAgencyScoped covers the agency back-office under /{slug}/agency/.
	RouteAgencyScoped
	// RouteProprietorScoped covers the proprietor space under /{slug}/proprietaire/.
	RouteProprietorScoped
	// RouteAdminScoped covers the platform console under /admin/.
	RouteAdminScoped
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteAgencyScoped:
		return "agency"
	case RouteProprietorScoped:
		return "proprietor"
	case RouteAdminScoped:
		return "admin"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying a path. ChangePassword marks the
// change-password sub-space inside the agency and proprietor scopes; those
// pages skip the ownership check and never redirect to themselves.
type Classification struct {
	Class          RouteClass
	ChangePassword bool
}

const (
	agencySegment         = "agency"
	proprietorSegment     = "proprietaire"
	adminSegment          = "admin"
	changePasswordSegment = "change-password"
)

// Classify derives the route classification for a path relative to the
// resolved agency slug. Classification is purely syntactic: it dereferences
// no data and is safe to call before the session resolves.
func Classify(path, slug string) Classification {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Classification{Class: RoutePublic}
	}

	if segments[0] == adminSegment {
		return Classification{Class: RouteAdminScoped}
	}

	if segments[0] != slug || len(segments) == 1 {
		return Classification{Class: RoutePublic}
	}

	switch segments[1] {
	case agencySegment:
		return Classification{
			Class:          RouteAgencyScoped,
			ChangePassword: containsSegment(segments[2:], changePasswordSegment),
		}
	case proprietorSegment:
		return Classification{
			Class:          RouteProprietorScoped,
			ChangePassword: containsSegment(segments[2:], changePasswordSegment),
		}
	default:
		return Classification{Class: RoutePublic}
	}
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func containsSegment(segments []string, want string) bool {
	for _, s := range segments {
		if s == want {
			return true
		}
	}
	return false
}

// Well-known redirect targets, all derived from the agency slug.

// PublicHomePath is the agency's public landing page.
func PublicHomePath(slug string) string {
	return "/" + slug
}

// AuthPath is the tenant-scoped sign-in page.
func AuthPath(slug string) string {
	return "/" + slug + "/" + agencySegment + "/auth"
}

// ProprietorDashboardPath is the proprietor's landing page.
func ProprietorDashboardPath(slug string) string {
	return "/" + slug + "/" + proprietorSegment + "/dashboard"
}

// ProprietorChangePasswordPath is where a proprietor with a pending password
// change is parked until the change goes through.
func ProprietorChangePasswordPath(slug string) string {
	return "/" + slug + "/" + proprietorSegment + "/" + changePasswordSegment
}

// AgencyServicesPath is the public services page shown to an owner who lands
// in the proprietor space.
func AgencyServicesPath(slug string) string {
	return "/" + slug + "/services"
}

// NotFoundPath is the generic not-found page. Tenant lookup failures and
// unknown slugs both land here.
const NotFoundPath = "/404"

// AdminAuthPath is the platform console sign-in page.
const AdminAuthPath = "/" + adminSegment + "/auth"

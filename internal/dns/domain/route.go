package domain

// Route identifies which upstream answers a query.
type Route uint8

const (
	// RoutePublic sends the query to the public resolver.
	RoutePublic Route = iota
	// RoutePrivate sends the query to the private-network resolver.
	RoutePrivate
)

// RouteFor returns RoutePrivate when the name matched the private domain set.
func RouteFor(matched bool) Route {
	if matched {
		return RoutePrivate
	}
	return RoutePublic
}

// String returns "private" or "public".
func (r Route) String() string {
	if r == RoutePrivate {
		return "private"
	}
	return "public"
}

// Indicator returns the one-character access log marker: "+" private, "-" public.
func (r Route) Indicator() string {
	if r == RoutePrivate {
		return "+"
	}
	return "-"
}

package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmoretti/petrivet/internal/petri"
)

// PlaceInfo describes one place of the net.
type PlaceInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Initial int    `json:"initial"`
}

// TransitionInfo describes one transition of the net.
type TransitionInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Timed bool   `json:"timed"`
}

// RouteInfo describes one transition invariant, a complete client trip.
type RouteInfo struct {
	Transitions []string `json:"transitions"`
	Label       string   `json:"label"`
}

// NetDescription is the full printable structure of the agency net.
type NetDescription struct {
	Places          []PlaceInfo      `json:"places"`
	Transitions     []TransitionInfo `json:"transitions"`
	PlaceInvariants []string         `json:"place_invariants"`
	Routes          []RouteInfo      `json:"routes"`
}

// routeLabels name the four client routes in invariant table order.
var routeLabels = []string{
	"regular agent, payment cancelled",
	"regular agent, payment confirmed",
	"superior agent, payment cancelled",
	"superior agent, payment confirmed",
}

// NewNetCommand creates the net command.
func NewNetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "net",
		Short: "Print the travel agency net structure",
		Long: `Print the travel agency net: places with their initial marking,
transitions, token-conservation laws, and the four client routes the
verifier counts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNet(rootOpts, cmd)
		},
	}

	return cmd
}

func runNet(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	desc := describeAgency()
	if formatter.Format == "json" {
		return formatter.Success(desc)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Travel agency net: %d places, %d transitions\n\n", len(desc.Places), len(desc.Transitions))

	fmt.Fprintln(w, "Places (initial marking):")
	for _, p := range desc.Places {
		fmt.Fprintf(w, "  P%-3d %-26s %d\n", p.Index, p.Name, p.Initial)
	}

	fmt.Fprintln(w, "\nTransitions:")
	for _, t := range desc.Transitions {
		timed := ""
		if t.Timed {
			timed = "  (timed)"
		}
		fmt.Fprintf(w, "  T%-3d %s%s\n", t.Index, t.Name, timed)
	}

	fmt.Fprintln(w, "\nPlace invariants:")
	for _, inv := range desc.PlaceInvariants {
		fmt.Fprintf(w, "  %s\n", inv)
	}

	fmt.Fprintln(w, "\nClient routes:")
	for _, r := range desc.Routes {
		fmt.Fprintf(w, "  [%s]  %s\n", strings.Join(r.Transitions, " "), r.Label)
	}

	return nil
}

// describeAgency flattens the agency net into its printable description.
func describeAgency() NetDescription {
	net := petri.Agency()
	initial := net.InitialMarking()

	desc := NetDescription{
		Places:      make([]PlaceInfo, net.NumPlaces()),
		Transitions: make([]TransitionInfo, net.NumTransitions()),
	}
	for p := range desc.Places {
		desc.Places[p] = PlaceInfo{Index: p, Name: net.PlaceName(p), Initial: initial[p]}
	}
	for t := range desc.Transitions {
		desc.Transitions[t] = TransitionInfo{
			Index: t,
			Name:  net.TransitionName(t),
			Timed: slices.Contains(petri.TimedTransitions, t),
		}
	}

	for _, inv := range net.PlaceInvariants() {
		terms := make([]string, len(inv.Places))
		for i, p := range inv.Places {
			terms[i] = fmt.Sprintf("P%d", p)
		}
		desc.PlaceInvariants = append(desc.PlaceInvariants,
			fmt.Sprintf("%s = %d", strings.Join(terms, " + "), inv.Sum))
	}

	for i, inv := range petri.AgencyInvariants() {
		route := RouteInfo{Transitions: make([]string, len(inv))}
		for j, t := range inv {
			route.Transitions[j] = fmt.Sprintf("T%d", t)
		}
		if i < len(routeLabels) {
			route.Label = routeLabels[i]
		}
		desc.Routes = append(desc.Routes, route)
	}

	return desc
}

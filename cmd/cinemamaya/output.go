// Cinemamaya - Explainable Personalized Movie Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemamaya

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinemamaya/internal/api"
	"github.com/tomtom215/cinemamaya/internal/recommend"
)

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeRecommendations(w io.Writer, recs *api.Recommendations) error {
	if len(recs.Items) == 0 {
		_, err := fmt.Fprintf(w, "No recommendations for user %d (%s)\n", recs.Metadata.UserID, recs.Metadata.EmptyReason)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tSCORE\tCONFIDENCE\tREASON")
	for i := range recs.Items {
		item := &recs.Items[i]
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.1f\t%s\n", i+1, item.Title, item.FinalScore, item.Confidence, item.Reason)
	}
	return tw.Flush()
}

func writeProfile(w io.Writer, p *recommend.Profile) error {
	if len(p.Genres) == 0 {
		_, err := fmt.Fprintf(w, "User %d has no genre affinity (%d records)\n", p.UserID, p.Records)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "User %d, %d records\n", p.UserID, p.Records)
	fmt.Fprintln(tw, "GENRE\tWEIGHT")
	for _, g := range p.Genres {
		fmt.Fprintf(tw, "%s\t%.1f\n", g.Display, g.Weight)
	}
	return tw.Flush()
}

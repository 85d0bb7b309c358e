// Package ucsc locates gene model tables on the UCSC goldenPath download
// server and lists the releases available there.
package ucsc

import (
	"fmt"
	"strings"

	"github.com/cellbrowser/cbgenes/internal/lines"
)

const baseURL = "https://hgdownload.cse.ucsc.edu/goldenPath"

// assemblies with Gencode tables, in listing order.
var assemblies = []string{"hg38", "mm10", "hg19"}

// ParseRelease extracts the release name from a gene type like "gencode-34"
// or "gencode-M25".
func ParseRelease(geneType string) (string, error) {
	release, ok := strings.CutPrefix(geneType, "gencode-")
	if !ok || release == "" {
		return "", fmt.Errorf("unrecognized gene type %q: expected gencode-<release>", geneType)
	}
	return release, nil
}

// DBForRelease returns the UCSC assembly that hosts a Gencode release:
// M-prefixed releases are mouse (mm10), a handful of early or lifted human
// releases live on hg19, everything else on hg38.
func DBForRelease(release string) string {
	if strings.HasPrefix(release, "M") {
		return "mm10"
	}
	switch release {
	case "7", "14", "17", "19":
		return "hg19"
	}
	if strings.Contains(release, "lift") {
		return "hg19"
	}
	return "hg38"
}

// AttrsURL returns the URL of the Gencode attribute table (gene ID, symbol,
// transcript ID columns) for a release.
func AttrsURL(db, release string) string {
	return fmt.Sprintf("%s/%s/database/wgEncodeGencodeAttrsV%s.txt.gz", baseURL, db, release)
}

// CompURL returns the URL of the comprehensive genePred table for a release.
func CompURL(db, release string) string {
	return fmt.Sprintf("%s/%s/database/wgEncodeGencodeCompV%s.txt.gz", baseURL, db, release)
}

// RemoteModel is one downloadable gene model release.
type RemoteModel struct {
	DB       string
	GeneType string
}

// ListRemote fetches the goldenPath database directory listings and returns
// every Gencode release available for download.
func ListRemote() ([]RemoteModel, error) {
	var models []RemoteModel
	for _, db := range assemblies {
		url := fmt.Sprintf("%s/%s/database/", baseURL, db)
		var listing []string
		err := lines.EachFrom(url, func(line string) error {
			listing = append(listing, line)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list %s releases: %w", db, err)
		}
		for _, fname := range ParseApacheDir(listing) {
			if !strings.HasPrefix(fname, "wgEncodeGencodeAttrsV") || !strings.HasSuffix(fname, ".txt.gz") {
				continue
			}
			release := strings.TrimSuffix(strings.TrimPrefix(fname, "wgEncodeGencodeAttrsV"), ".txt.gz")
			models = append(models, RemoteModel{DB: db, GeneType: "gencode-" + release})
		}
	}
	return models, nil
}

// ParseApacheDir extracts the linked file names from an Apache directory
// listing page.
func ParseApacheDir(htmlLines []string) []string {
	var fnames []string
	for _, l := range htmlLines {
		if !strings.Contains(l, "<a href") {
			continue
		}
		_, rest, ok := strings.Cut(l, `">`)
		if !ok {
			continue
		}
		fname, _, ok := strings.Cut(rest, "<")
		if !ok || fname == "" {
			continue
		}
		fnames = append(fnames, fname)
	}
	return fnames
}

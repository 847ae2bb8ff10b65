// Binary fetchbrowsers downloads the browsers and WebDriver servers used by
// the integration tests into the testdata directory.
//
//	go run ./cmd/fetchbrowsers
//	go test -v . -headless
package main

import (
	"context"
	"flag"

	"github.com/golang/glog"
	"github.com/google/go-github/v58/github"
	"github.com/wanmail/vaadin-selenium/internal/download"
)

var (
	dir              = flag.String("dir", "testdata", "The directory to download into.")
	downloadBrowsers = flag.Bool("download_browsers", true, "If true, download the Firefox and Chrome browsers.")
	downloadLatest   = flag.Bool("download_latest", false, "If true, download the latest versions.")
)

func main() {
	flag.Parse()
	defer glog.Flush()
	ctx := context.Background()

	chromeBuild := download.DefaultChromeBuild
	firefoxVersion := download.DefaultFirefoxVersion
	if *downloadLatest {
		chromeBuild = ""
		firefoxVersion = ""
	}

	var files []download.File
	chrome, err := download.ChromeFiles(ctx, chromeBuild)
	if err != nil {
		glog.Errorf("Unable to download Chromium: %v", err)
	}
	files = append(files, chrome...)
	files = append(files, download.FirefoxFile(firefoxVersion))

	gecko, err := download.GeckoDriverFile(ctx, github.NewClient(nil))
	if err != nil {
		glog.Errorf("Unable to find the latest geckodriver: %v", err)
	} else {
		files = append(files, gecko)
	}

	f := &download.Fetcher{Dir: *dir, SkipBrowsers: !*downloadBrowsers}
	if err := f.FetchAll(ctx, files); err != nil {
		glog.Exit(err)
	}
}

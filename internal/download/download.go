// Package download fetches the browsers and WebDriver servers that the
// integration tests drive.
package download

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"github.com/google/go-github/v58/github"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	// DefaultChromeBuild is a known good build of the
	// chromium-browser-snapshots/Linux_x64 bucket.
	DefaultChromeBuild = "1181205"

	// DefaultFirefoxVersion is a known good Firefox release.
	DefaultFirefoxVersion = "115.12.0esr"
)

// File describes how to download a file from the Web.
type File struct {
	URL  string
	Name string
	// Hash is the hex digest of the archive. Files with a hash are only
	// downloaded when the local copy differs.
	Hash     string
	HashType string // default is sha256
	// Rename moves Rename[0] to Rename[1] after unpacking.
	Rename  []string
	Browser bool
}

// Fetcher downloads and unpacks files into Dir.
type Fetcher struct {
	Dir string
	// SkipBrowsers skips files whose Browser field is set.
	SkipBrowsers bool
	Client       *http.Client
}

func (f *Fetcher) path(name string) string {
	return filepath.Join(f.Dir, name)
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// ChromeFiles returns the Chromium snapshot and the matching ChromeDriver.
// An empty build selects the latest snapshot.
func ChromeFiles(ctx context.Context, build string) ([]File, error) {
	client, err := storage.NewClient(ctx, option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		return nil, fmt.Errorf("cannot create a storage client for downloading the chrome browser: %v", err)
	}
	defer client.Close()
	return chromeFiles(ctx, client.Bucket(chromeBucket), build)
}

const (
	chromeBucket   = "chromium-browser-snapshots"
	prefixLinux64  = "Linux_x64"
	lastChangeFile = "Linux_x64/LAST_CHANGE"
)

func chromeFiles(ctx context.Context, bkt *storage.BucketHandle, build string) ([]File, error) {
	if build == "" {
		r, err := bkt.Object(lastChangeFile).NewReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot create a reader for gs://%s/%s: %v", chromeBucket, lastChangeFile, err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("cannot read from gs://%s/%s: %v", chromeBucket, lastChangeFile, err)
		}
		build = strings.TrimSpace(string(data))
	}

	var files []File
	for _, want := range []struct {
		object string
		file   File
	}{
		{"chrome-linux.zip", File{Name: "chrome-linux.zip", Browser: true}},
		{"chromedriver_linux64.zip", File{
			Name:   "chromedriver.zip",
			Rename: []string{"chromedriver_linux64/chromedriver", "chromedriver"},
		}},
	} {
		object := path.Join(prefixLinux64, build, want.object)
		attrs, err := bkt.Object(object).Attrs(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot get the attributes of gs://%s/%s: %v", chromeBucket, object, err)
		}
		f := want.file
		f.URL = attrs.MediaLink
		f.Hash = hex.EncodeToString(attrs.MD5)
		f.HashType = "md5"
		files = append(files, f)
	}
	return files, nil
}

// LatestGitHubRelease returns the asset of the latest release of owner/repo
// whose name matches assetName. The file is stored as localName.
func LatestGitHubRelease(ctx context.Context, client *github.Client, owner, repo, assetName, localName string) (File, error) {
	assetNameRE, err := regexp.Compile(assetName)
	if err != nil {
		return File{}, fmt.Errorf("invalid asset name regular expression %q: %s", assetName, err)
	}
	rel, _, err := client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return File{}, err
	}
	for _, a := range rel.Assets {
		if !assetNameRE.MatchString(a.GetName()) {
			continue
		}
		u := a.GetBrowserDownloadURL()
		if u == "" {
			return File{}, fmt.Errorf("%s does not have a download URL", a.GetName())
		}
		return File{Name: localName, URL: u}, nil
	}
	return File{}, fmt.Errorf("release asset %s not found at https://github.com/%s/%s/releases", assetName, owner, repo)
}

// GeckoDriverFile returns the latest Linux geckodriver release.
func GeckoDriverFile(ctx context.Context, client *github.Client) (File, error) {
	return LatestGitHubRelease(ctx, client, "mozilla", "geckodriver", `geckodriver-.*linux64\.tar\.gz$`, "geckodriver.tar.gz")
}

// FirefoxFile returns the Firefox release with the given version, or the
// latest nightly when version is empty.
func FirefoxFile(version string) File {
	if version == "" {
		return File{
			URL:     "https://download.mozilla.org/?product=firefox-nightly-latest-ssl&os=linux64&lang=en-US",
			Name:    "firefox-nightly.tar.bz2",
			Browser: true,
		}
	}
	v := url.PathEscape(version)
	return File{
		URL:     "https://download-installer.cdn.mozilla.net/pub/firefox/releases/" + v + "/linux-x86_64/en-US/firefox-" + v + ".tar.bz2",
		Name:    "firefox.tar.bz2",
		Browser: true,
	}
}

// FetchAll fetches files concurrently and returns the first error.
func (f *Fetcher) FetchAll(ctx context.Context, files []File) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := f.Fetch(ctx, file); err != nil {
				return fmt.Errorf("error handling %s: %w", file.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Fetch downloads file unless an identical copy is present, then unpacks it.
func (f *Fetcher) Fetch(ctx context.Context, file File) error {
	if file.Browser && f.SkipBrowsers {
		glog.Infof("Skipping %q because browser downloads are disabled.", file.Name)
		return nil
	}
	if file.Hash != "" && f.sameHash(file) {
		glog.Infof("Skipping file %q which has already been downloaded.", file.Name)
	} else {
		glog.Infof("Downloading %q from %q", file.Name, file.URL)
		if err := f.download(ctx, file); err != nil {
			return err
		}
	}

	if err := f.unpack(file); err != nil {
		return err
	}

	if rename := file.Rename; len(rename) == 2 {
		from, to := f.path(rename[0]), f.path(rename[1])
		glog.Infof("Renaming %q to %q", from, to)
		os.RemoveAll(to) // Ignore error.
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("renaming %q to %q: %w", from, to, err)
		}
	}
	return nil
}

func newHash(hashType string) hash.Hash {
	if strings.ToLower(hashType) == "md5" {
		return md5.New()
	}
	return sha256.New()
}

func (f *Fetcher) download(ctx context.Context, file File) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: error downloading %q: %s", file.Name, file.URL, resp.Status)
	}

	out, err := os.Create(f.path(file.Name))
	if err != nil {
		return fmt.Errorf("error creating %q: %v", f.path(file.Name), err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %q: %v", f.path(file.Name), closeErr)
		}
	}()

	h := newHash(file.HashType)
	if _, err := io.Copy(io.MultiWriter(out, h), resp.Body); err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	if file.Hash != "" {
		if sum := hex.EncodeToString(h.Sum(nil)); sum != file.Hash {
			return fmt.Errorf("%s: got hash %q, want %q", file.Name, sum, file.Hash)
		}
	}
	return nil
}

func (f *Fetcher) sameHash(file File) bool {
	in, err := os.Open(f.path(file.Name))
	if err != nil {
		return false
	}
	defer in.Close()

	h := newHash(file.HashType)
	if _, err := io.Copy(h, in); err != nil {
		return false
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if sum != file.Hash {
		glog.Warningf("File %q: got hash %q, expect hash %q", file.Name, sum, file.Hash)
		return false
	}
	return true
}

func (f *Fetcher) unpack(file File) error {
	name := f.path(file.Name)
	var err error
	switch {
	case strings.HasSuffix(file.Name, ".zip"):
		err = f.unzip(name)
	case strings.HasSuffix(file.Name, ".tar.gz"):
		err = f.untar(name, func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) })
	case strings.HasSuffix(file.Name, ".tar.bz2"):
		err = f.untar(name, func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil })
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("error unpacking %q: %w", file.Name, err)
	}
	glog.Infof("Unpacked %q", name)
	return nil
}

// target returns where the archive member name is extracted, rejecting
// members that would land outside Dir.
func (f *Fetcher) target(name string) (string, error) {
	p := filepath.Join(f.Dir, name)
	rel, err := filepath.Rel(f.Dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive member %q escapes %q", name, f.Dir)
	}
	return p, nil
}

func (f *Fetcher) unzip(name string) error {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, zf := range zr.File {
		p, err := f.target(zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(p, 0755); err != nil {
				return err
			}
			continue
		}
		r, err := zf.Open()
		if err != nil {
			return err
		}
		err = writeFile(p, r, zf.Mode())
		r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) untar(name string, decompress func(io.Reader) (io.Reader, error)) error {
	in, err := os.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()
	r, err := decompress(in)
	if err != nil {
		return err
	}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		p, err := f.target(hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(p, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(p, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			os.Remove(p) // Ignore error.
			if err := os.Symlink(hdr.Linkname, p); err != nil {
				return err
			}
		}
	}
}

func writeFile(p string, r io.Reader, mode os.FileMode) (err error) {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(out, r)
	return err
}

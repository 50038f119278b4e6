package authwidget

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-authwidget/pkg/i18n"
	"github.com/goliatone/go-authwidget/pkg/provider"
	"github.com/goliatone/go-authwidget/pkg/record"
)

// Fixture directories inside a fixtures filesystem.
const (
	FixtureRecordsDir      = "records"
	FixtureProvidersDir    = "providers"
	FixtureTranslationsDir = "translations"
)

// Fixtures is the data a reference host serves: records, provider
// configurations and translation catalogs.
type Fixtures struct {
	Records      *record.Store
	Providers    *provider.Store
	Translations *i18n.MapTranslator
}

// LoadFixtures reads the records/, providers/ and translations/ directories
// of fsys. Missing directories load as empty.
func LoadFixtures(fsys fs.FS) (Fixtures, error) {
	if fsys == nil {
		return Fixtures{}, errors.New("authwidget: fixtures filesystem is nil")
	}

	recordsFS, err := subdir(fsys, FixtureRecordsDir)
	if err != nil {
		return Fixtures{}, err
	}
	providersFS, err := subdir(fsys, FixtureProvidersDir)
	if err != nil {
		return Fixtures{}, err
	}
	translationsFS, err := subdir(fsys, FixtureTranslationsDir)
	if err != nil {
		return Fixtures{}, err
	}

	records, err := record.LoadFS(recordsFS)
	if err != nil {
		return Fixtures{}, fmt.Errorf("authwidget: load records: %w", err)
	}
	providers, err := provider.LoadFS(providersFS)
	if err != nil {
		return Fixtures{}, fmt.Errorf("authwidget: load providers: %w", err)
	}
	translations, err := i18n.LoadFS(translationsFS)
	if err != nil {
		return Fixtures{}, fmt.Errorf("authwidget: load translations: %w", err)
	}
	return Fixtures{Records: records, Providers: providers, Translations: translations}, nil
}

func subdir(fsys fs.FS, name string) (fs.FS, error) {
	info, err := fs.Stat(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authwidget: stat %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("authwidget: %s is not a directory", name)
	}
	sub, err := fs.Sub(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("authwidget: open %s: %w", name, err)
	}
	return sub, nil
}

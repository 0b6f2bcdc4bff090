package supernovacli

import (
	"context"
	"fmt"
	"strings"

	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// Description is the structure of a design system version: its brands and the
// themes defined in each brand.
type Description struct {
	DesignSystem supernova.DesignSystem
	Version      supernova.Version
	Brands       []BrandDescription
}

// BrandDescription is a brand with its themes.
type BrandDescription struct {
	Brand  supernova.Brand
	Themes []supernova.Theme
}

// DescribeDesignSystem fetches the brands and themes of the design system's
// version. It only reads the connection fields of opts.
func DescribeDesignSystem(ctx context.Context, opts Options) (*Description, error) {
	client, err := opts.Client()
	if err != nil {
		return nil, err
	}
	ds, version, err := opts.connect(ctx, client)
	if err != nil {
		return nil, err
	}

	ref := supernova.VersionRef{DesignSystemID: ds.ID, VersionID: version.ID}
	brands, err := client.Brands(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch brands: %w", err)
	}
	themes, err := client.Themes(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch themes: %w", err)
	}

	d := &Description{DesignSystem: *ds, Version: *version}
	for _, b := range brands {
		d.Brands = append(d.Brands, BrandDescription{
			Brand:  b,
			Themes: supernova.ThemesOf(themes, b.ID),
		})
	}
	return d, nil
}

// String renders the description as an indented tree.
func (d *Description) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "---  Design system %q, id: %s\n\n", d.DesignSystem.Name, d.DesignSystem.ID)
	if len(d.Brands) == 0 {
		sb.WriteString("  ↳  No brands defined in this design system\n")
	}
	for _, b := range d.Brands {
		fmt.Fprintf(&sb, "  ↳  Brand: %q, id: %s\n", b.Brand.Name, b.Brand.ID)
		if len(b.Themes) == 0 {
			sb.WriteString("    ↳  No themes defined in this brand\n")
		}
		for _, t := range b.Themes {
			fmt.Fprintf(&sb, "    ↳  Theme: %q, id: %s\n", t.Name, t.ID)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

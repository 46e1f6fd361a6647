// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/varres/varres/pkg/bundle"
	"github.com/varres/varres/pkg/res"
)

var _ = Describe("build, seal, load, resolve", func() {
	var data []byte

	BeforeEach(func() {
		cfg, err := res.NewProfile(res.ProfileExtendedExample, nil, nil)
		Expect(err).NotTo(HaveOccurred())

		builder := res.NewBuilder(cfg)
		Expect(builder.AddDeclarative(res.DeclarativeCollection{
			Resources: []res.DeclarativeResource{
				{ID: "app.title", JSON: map[string]any{"text": "Hello"}, Conditions: map[string]string{"language": "en"}},
				{ID: "app.title", JSON: map[string]any{"text": "Bonjour"}, Conditions: map[string]string{"language": "fr"}},
			},
			Collections: []res.DeclarativeCollection{
				{
					Conditions: map[string]string{"currentTerritory": "419"},
					Resources: []res.DeclarativeResource{
						{ID: "prices.note", JSON: map[string]any{"note": "latam"}},
					},
				},
			},
		})).To(Succeed())

		manager, err := builder.Compile()
		Expect(err).NotTo(HaveOccurred())

		sealed, err := bundle.Build(manager, bundle.BuildOptions{Normalize: true, Version: "e2e"})
		Expect(err).NotTo(HaveOccurred())
		data, err = bundle.Encode(sealed)
		Expect(err).NotTo(HaveOccurred())
	})

	It("resolves language and macro-region conditions from the loaded bundle", func() {
		manager, err := bundle.Load(data, bundle.LoadOptions{})
		Expect(err).NotTo(HaveOccurred())

		value, err := manager.Resolve("app.title", res.Context{"language": "en-US"})
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(HaveKeyWithValue("text", "Hello"))

		value, err = manager.Resolve("prices.note", res.Context{"currentTerritory": "MX"})
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(HaveKeyWithValue("note", "latam"))

		_, err = manager.Resolve("prices.note", res.Context{"currentTerritory": "ES"})
		Expect(err).To(MatchError(res.ErrNoMatchingCandidate))
	})

	It("accepts context tokens parsed against the loaded configuration", func() {
		manager, err := bundle.Load(data, bundle.LoadOptions{})
		Expect(err).NotTo(HaveOccurred())

		ctx, err := res.ParseContextToken(manager.Configuration(), "lang=fr|territory=MX")
		Expect(err).NotTo(HaveOccurred())

		value, err := manager.Resolve("app.title", ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(HaveKeyWithValue("text", "Bonjour"))
	})

	It("refuses tampered bundles unless verification is skipped", func() {
		var parsed bundle.Bundle
		Expect(json.Unmarshal(data, &parsed)).To(Succeed())
		parsed.CompiledCollection.Resources[0].ID = "tampered"

		_, err := bundle.LoadBundle(&parsed, bundle.LoadOptions{})
		Expect(err).To(MatchError(bundle.ErrIntegrity))

		_, err = bundle.LoadBundle(&parsed, bundle.LoadOptions{SkipChecksumVerification: true})
		Expect(err).NotTo(HaveOccurred())
	})
})

package scraper

// DefaultMaxReviews caps the reviews taken from one page.
const DefaultMaxReviews = 50

// ProductSelectors configures the chains used on a product detail page.
type ProductSelectors struct {
	Title       Chain `yaml:"title"`
	Price       Chain `yaml:"price"`
	Brand       Chain `yaml:"brand"`
	Description Chain `yaml:"description"`
	Image       Chain `yaml:"image"`
}

// ReviewSelectors configures review extraction. Containers are tried in
// order and the first one yielding any review wins.
type ReviewSelectors struct {
	Containers []string `yaml:"containers"`
	Name       Chain    `yaml:"name"`
	Rating     Chain    `yaml:"rating"`
	Text       Chain    `yaml:"text"`
	Date       Chain    `yaml:"date"`
	MaxReviews int      `yaml:"max_reviews"`
}

// ListingSpec describes a category listing page with many product cards.
type ListingSpec struct {
	Source         string `yaml:"source"`
	BaseURL        string `yaml:"base_url"`
	Container      string `yaml:"container"`
	Name           Chain  `yaml:"name"`
	Price          Chain  `yaml:"price"`
	Link           Chain  `yaml:"link"`
	Image          Chain  `yaml:"image"`
	SourceIDPrefix string `yaml:"source_id_prefix"`
	Limit          int    `yaml:"limit"`
}

// Selectors is the complete extraction configuration. Adding a source is a
// matter of adding data here, not code.
type Selectors struct {
	Product  ProductSelectors       `yaml:"product"`
	Reviews  ReviewSelectors        `yaml:"reviews"`
	Listings map[string]ListingSpec `yaml:"listings"`
}

var imageAttrs = []string{"data-src", "src"}

// DefaultSelectors returns the built-in configuration for generic product
// pages and the known listing sources.
func DefaultSelectors() Selectors {
	return Selectors{
		Product: ProductSelectors{
			Title:       TextChain("h1", ".product-title", "#product-title", ".title"),
			Price:       TextChain(".price", ".product-price", ".current-price", `[data-testid="price"]`),
			Brand:       TextChain(`[itemprop="brand"]`, ".product-brand", ".brand"),
			Description: TextChain(".description", ".product-description", ".product-details"),
			Image:       AttrChain(imageAttrs, ".product-image img", ".main-image img", `img[data-testid="product-image"]`),
		},
		Reviews: ReviewSelectors{
			Containers: []string{".review", ".review-item", `[data-testid="review"]`},
			Name:       TextChain(".reviewer-name", ".review-author", ".name"),
			Rating:     TextChain(".rating", ".stars", `[data-testid="rating"]`),
			Text:       TextChain(".review-text", ".review-content", ".comment"),
			Date:       TextChain(".review-date", ".date"),
			MaxReviews: DefaultMaxReviews,
		},
		Listings: map[string]ListingSpec{
			"snapdeal": {
				Source:         "Snapdeal",
				BaseURL:        "https://www.snapdeal.com",
				Container:      "div.product-tuple-listing",
				Name:           TextChain("p.product-title"),
				Price:          TextChain("span.lfloat.product-price"),
				Link:           AttrChain([]string{"href"}, "a"),
				Image:          AttrChain(imageAttrs, "img"),
				SourceIDPrefix: "SD",
			},
			"paytmmall": {
				Source:         "PaytmMall",
				BaseURL:        "https://paytmmall.com",
				Container:      `div[data-testid="product-item"]`,
				Name:           TextChain("h2", "a._3jz7"),
				Price:          TextChain("span._1kMS", "div._1kMS"),
				Link:           AttrChain([]string{"href"}, "a"),
				Image:          AttrChain(imageAttrs, "img"),
				SourceIDPrefix: "PM",
			},
			"shopclues": {
				Source:         "ShopClues",
				BaseURL:        "https://www.shopclues.com",
				Container:      "div.column",
				Name:           TextChain("h2", "a.pname"),
				Price:          TextChain("span.p_price", "div.price"),
				Link:           AttrChain([]string{"href"}, "a"),
				Image:          AttrChain(imageAttrs, "img"),
				SourceIDPrefix: "SC",
			},
		},
	}
}

// Merge fills every empty chain of s from def, so a partial YAML file only
// needs to override what it changes. Listing specs are merged field by field.
func (s Selectors) Merge(def Selectors) Selectors {
	pick := func(c, d Chain) Chain {
		if len(c) == 0 {
			return d
		}
		return c
	}
	s.Product.Title = pick(s.Product.Title, def.Product.Title)
	s.Product.Price = pick(s.Product.Price, def.Product.Price)
	s.Product.Brand = pick(s.Product.Brand, def.Product.Brand)
	s.Product.Description = pick(s.Product.Description, def.Product.Description)
	s.Product.Image = pick(s.Product.Image, def.Product.Image)

	if len(s.Reviews.Containers) == 0 {
		s.Reviews.Containers = def.Reviews.Containers
	}
	s.Reviews.Name = pick(s.Reviews.Name, def.Reviews.Name)
	s.Reviews.Rating = pick(s.Reviews.Rating, def.Reviews.Rating)
	s.Reviews.Text = pick(s.Reviews.Text, def.Reviews.Text)
	s.Reviews.Date = pick(s.Reviews.Date, def.Reviews.Date)
	if s.Reviews.MaxReviews <= 0 {
		s.Reviews.MaxReviews = def.Reviews.MaxReviews
	}

	if s.Listings == nil {
		s.Listings = make(map[string]ListingSpec, len(def.Listings))
	}
	for name, spec := range def.Listings {
		if own, ok := s.Listings[name]; ok {
			spec = own.merge(spec)
		}
		s.Listings[name] = spec
	}
	return s
}

// merge fills the empty fields of a listing override from the built-in spec
// of the same name, so `snapdeal: {limit: 20}` keeps its selectors.
func (l ListingSpec) merge(def ListingSpec) ListingSpec {
	str := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	chain := func(c, d Chain) Chain {
		if len(c) == 0 {
			return d
		}
		return c
	}
	l.Source = str(l.Source, def.Source)
	l.BaseURL = str(l.BaseURL, def.BaseURL)
	l.Container = str(l.Container, def.Container)
	l.SourceIDPrefix = str(l.SourceIDPrefix, def.SourceIDPrefix)
	l.Name = chain(l.Name, def.Name)
	l.Price = chain(l.Price, def.Price)
	l.Link = chain(l.Link, def.Link)
	l.Image = chain(l.Image, def.Image)
	if l.Limit <= 0 {
		l.Limit = def.Limit
	}
	return l
}

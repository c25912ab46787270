package portal

// Page is static content.
type Page struct {
	Heading  string    `json:"heading"`
	Sections []Section `json:"sections"`
}

// Section is a block of a page.
type Section struct {
	Heading    string   `json:"heading,omitempty"`
	Paragraphs []string `json:"paragraphs,omitempty"`
	Items      []Item   `json:"items,omitempty"`
	Questions  []QA     `json:"questions,omitempty"`
}

// Item is a labelled list entry.
type Item struct {
	Term string `json:"term"`
	Text string `json:"text"`
}

// QA is a question with its answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func homeIntro() *Page {
	return &Page{
		Heading: "Welcome to the Federal Legal & Government Document Archive",
		Sections: []Section{
			{
				Paragraphs: []string{
					"Your comprehensive portal for official Russian legal and government documents.",
					"Use the sidebar navigation to explore different categories of documents:",
				},
				Items: []Item{
					{"Federal Laws", "Search all codified laws (Titles 1–8)."},
					{"Executive Documents", "Find Presidential orders, ministerial decrees, etc."},
					{"Judicial Documents", "Access court rulings, opinions, and prosecutorial guidelines."},
					{"Treaties & Resolutions", "Browse ratified treaties and legislative resolutions."},
					{"Advanced Search", "Perform combined searches across all categories."},
				},
			},
			{Paragraphs: []string{"Begin your search by selecting a category from the left sidebar."}},
		},
	}
}

func helpPage() *Page {
	return &Page{
		Heading: "Archive Help & Guide",
		Sections: []Section{
			{Paragraphs: []string{
				"Welcome to the Federal Legal & Government Document Archive. This guide will help you navigate and utilize the portal effectively.",
			}},
			{
				Heading: "How to Use the Search Portal",
				Paragraphs: []string{
					`Use the sidebar on the left to select a document category. Each category provides specific filters to refine your search. Enter keywords, dates, or other relevant criteria and click "Search".`,
				},
			},
			{
				Heading: "Understanding Search Results",
				Paragraphs: []string{
					`Search results are displayed in a list format. Click on a result card to see a detailed view of the document, including its full summary and metadata. A "View Document Externally" button is available for accessing official sources.`,
				},
			},
			{
				Heading: "Key Features",
				Items: []Item{
					{"Category-Specific Filters", "Tailored search options for different document types."},
					{"Advanced Search", "Combine criteria across multiple categories for comprehensive searches."},
					{"Responsive Design", "Access the portal seamlessly on desktop, tablet, and mobile devices."},
					{"Admin Panel", "For authorized users to add, edit, and delete documents (requires authentication)."},
				},
			},
			{
				Heading: "Contact Support",
				Paragraphs: []string{
					"If you encounter any issues or have questions, please refer to the FAQs section or contact our support team at support@archive.gov.",
				},
			},
		},
	}
}

func faqPage() *Page {
	return &Page{
		Heading: "Frequently Asked Questions (FAQs)",
		Sections: []Section{
			{
				Heading: "General Questions",
				Questions: []QA{
					{
						"What kind of documents can I find here?",
						"This archive contains Federal Laws, Executive Documents (Presidential orders, ministerial decrees), Judicial Documents (court rulings), and International Treaties & Resolutions.",
					},
					{
						"How often is the archive updated?",
						"The archive is updated regularly, typically within 24-48 hours of a document's official publication.",
					},
				},
			},
			{
				Heading: "Search Questions",
				Questions: []QA{
					{
						"Can I search by multiple criteria?",
						`Yes, each category has specific filters. For a broader search, use the "Advanced Search" page to combine criteria across document types.`,
					},
					{
						"What if I can't find a specific document?",
						`Double-check your search terms and filters. If you still can't find it, it might not be in the archive yet, or you can try a broader keyword search in the "Advanced Search" section.`,
					},
				},
			},
		},
	}
}

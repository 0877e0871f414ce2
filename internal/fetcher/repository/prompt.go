package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/dto"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/utils"
)

// BuildExtractionPrompt renders one extraction batch into the analyst prompt.
// daysBack <= 0 omits the cutoff instruction.
func BuildExtractionPrompt(competitorName string, batch []dto.CandidateArticle, now time.Time, daysBack int) string {
	var articlesBuilder strings.Builder
	for i, article := range batch {
		title := utils.SanitizeText(article.Title)
		if title == "" {
			title = "No title"
		}
		date := article.Date
		if date == "" {
			date = "Unknown"
		}
		snippet := utils.Truncate(utils.SanitizeText(article.Snippet), 500)
		articlesBuilder.WriteString(fmt.Sprintf(
			"\n---\nArticle %d:\nTitle: %s\nPublished Date: %s\nURL: %s\nRegion Found: %s\nContent: %s\n---\n",
			i+1, title, date, article.Link, strings.ToUpper(article.SearchRegion), snippet,
		))
	}

	dateInstruction := ""
	if daysBack > 0 {
		cutoff := now.AddDate(0, 0, -daysBack)
		dateInstruction = fmt.Sprintf(
			"CRITICAL: IGNORE any news events that occurred before %s. Only include news from the last %d days.",
			cutoff.Format("2006-01-02"), daysBack,
		)
	}

	return fmt.Sprintf(analysisPromptTemplate,
		competitorName,
		articlesBuilder.String(),
		now.Format("2006-01-02"),
		dateInstruction,
	)
}

// BuildGroundedSearchPrompt is the grounded web-search prompt for a broad
// recent-news sweep over one competitor.
func BuildGroundedSearchPrompt(searchName string, daysBack int) string {
	return fmt.Sprintf(
		"Search for recent news (last %d days) about '%s', a machine tool or industrial machinery manufacturer. "+
			"Focus on: new factory openings, major contract wins, government tenders, "+
			"partnerships, acquisitions, new CNC or automation product launches. "+
			"Prioritize news from South America (Brazil, Argentina, Colombia, Chile), "+
			"Europe (Spain, Germany, Italy, France), and North America (USA, Mexico). "+
			"Please provide a bulleted list of the articles you find, including their dates.",
		daysBack, searchName,
	)
}

// BuildDeepSearchPrompt is the site- and trade-press-focused grounded prompt.
func BuildDeepSearchPrompt(searchName, domain string, daysBack int) string {
	return fmt.Sprintf(
		"Find any press releases, news announcements, or blog posts from or about "+
			"'%s' (website: %s) published in the last %d days. "+
			"Also search trade publications (Metal Working News, Modern Machine Shop, "+
			"Metalurgia e Mecânica, Maquinas e Metais, Interempresas Metalmecanica) "+
			"and industry blogs for any coverage of %s in the machine tool / "+
			"industrial machinery sector. "+
			"Please provide a bulleted list of the articles you find, including their dates.",
		searchName, domain, daysBack, searchName,
	)
}

const analysisPromptTemplate = `You are a competitive intelligence analyst for CIMHSA, a Brazilian manufacturer of CNC machine tools, industrial machinery, and automation solutions.

I found these search results about %s:

%s

CONTEXT:
Today is %s.
%s

IMPORTANT: Articles may be in Portuguese, Spanish, or English. Analyze ALL articles regardless of language. Always output your title and summary in ENGLISH.

For articles where 'Region Found' contains "GEMINI": Be more lenient. Include minor updates, blog posts, and general company activity unless completely irrelevant (spam/ads).

Your job is to find REAL NEWS EVENTS only. Include:
- New factory/plant openings or expansions (especially in South America or Europe)
- New contracts, tenders won (Government, Construction, Agriculture, Industry)
- Mergers, Acquisitions, Joint Ventures
- New product launches (CNC machines, heavy machinery, automation, tooling)
- Trade show appearances with new products (FEIMEC, EMO, JIMTOF, IMTS, etc.)
- Financial results, funding rounds, large investments
- Leadership changes (CEO, Country Manager, Regional Director)
- Market expansions into new countries or regions

STRICTLY EXCLUDE (these are NOT news):
- Product catalog pages or sales listings (MercadoLibre, OLX, Alibaba, etc.)
- Generic company profile descriptions ("Company X manufactures machines...")
- Job postings or career pages
- Social media posts without real news content
- "About us" or company overview pages
- Articles about a different company with a similar name (verify industry context)
- Price lists or quotation pages
- ANY sports/football/soccer content (UEFA, Copa América, Champions League, Messi, etc.) - these appear in Argentine and Spanish search results and are NEVER relevant.

If NONE of the articles contain real news events, respond with: {"no_relevant_news": true}

Otherwise, return JSON:

{
  "news_items": [
    {
      "event_type": "New Project" | "Investment" | "Product Launch" | "Partnership" | "Leadership Change" | "Market Expansion" | "Financial Performance" | "Other",
      "category": "Product" | "Expansion" | "Pricing" | "General",
      "title": "Clear headline in ENGLISH (max 100 chars)",
      "summary": "2-3 sentence summary in ENGLISH (max 500 chars). Focus on the 'So What?' for a competitor analysis.",
      "threat_level": 1-5,
      "date": "YYYY-MM-DD",
      "source_url": "The actual URL from the article",
      "region": "SOUTH_AMERICA" | "NORTH_AMERICA" | "EUROPE" | "APAC" | "GLOBAL",
      "details": {
        "location": "City, Country or null",
        "financial_value": "Amount or null",
        "partners": ["Companies"],
        "products": ["Products"]
      }
    }
  ]
}

Category Guide:
- "Product": New product/feature/machine launches
- "Expansion": New contracts, new markets, new factories, partnerships, deployments
- "Pricing": Funding rounds, revenue news, financial results, investments
- "General": Leadership changes, trade show appearances, other

Threat Level Guide:
- 1: Routine news, minimal impact
- 2: Minor development, worth monitoring
- 3: Moderate competitive move
- 4: Significant threat (e.g. new factory in Brazil/Argentina, major EU contract)
- 5: CRITICAL: Competitor winning a massive government tender in South America, or acquiring a key regional distributor.

CRITICAL: Assign highest threat levels (4-5) for news in SOUTH AMERICA (Brazil, Argentina, Colombia, Chile) and EUROPE (Spain, Germany, Italy).
Assign threat level 3-4 for significant moves in NORTH AMERICA (USA, Mexico).

DATE EXTRACTION INSTRUCTIONS:
- Use the EXACT "Published Date" provided.
- If no date is found, use the current date.
- Return ONLY valid JSON.`

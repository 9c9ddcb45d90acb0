// Package news provides the canned stories and advertisements shown beside a
// forecast.
package news

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// stories are story bodies as wrapped in source; News collapses their
// whitespace.
var stories = collapse([]string{
	`A tornado tore through Stillwater, Oklahoma last night,
	touching down at approximately 10:20pm on the leading edge
	of a squall line of severe thunderstorms. The Western Value
	Inn at 51 and 177 was destroyed. Image from the scene
	showed emergency crews sifting through rubble after part of
	the motel's second story collapsed into a pile of debris
	strewn about the first floor and parking lot. Two deaths
	have been confirmed by county emergency management. Another
	apparent tornado produced damage in the Norman area after
	midnight.`,
	`An 8.0 magnitude earthquake shook north-central Bolivia
	yesterday morning, acording to the U.S. Geological Survey.
	There were no immediate reports of deaths or major damage.
	The quake, at a moderate depth of 71 miles, strike at 2:41
	a.m., 50 miles southeast of Sorata. There were no immediate
	reports of deaths. The mayor of Sorata told local radio
	station RPP that the quake was felt very strongly there,
	but it was not possible to move around the town because of
	the darkness. A number of old houses collapsed, and the
	electricity was cut, according to the National Emergency
	Operations Center.`,
	`Our primary journalistic mission is to report on breaking
	weather news and the environment. This story does not
	necessarily represent the position of our parent company.`,
	`In a recent article produced by the Tax Policy Center, tax
	analyst Smithson Roberts reports that 43% of Americans
	won't pay federal income taxes this year. Roberts, a former
	deputy assistant director for the Congressional Budget
	Office, also states that "many commentators" have twisted
	such statistics to suggest "that nearly half of all
	households paid no tax at all when, in fact, nearly
	everyone pays something." Roberts is correct that the
	federal income tax is just one of many taxes, and hence, it
	is misleading to ignore other taxes when discussing makers
	and takers. However, he ignores another crucial aspect of
	this issue, which is that the person who pays $1,000 in
	taxes and receives $10,000 in government benefits is a
	taker on the net. Even though this person pays
	"something", as Roberts notes, he receives far more from
	the government than he pays in taxes.`,
	`The Intergovernmental Panel on Climate Change (IPCC) is
	"the leading international body for the assessment of
	climate change," and its "work serves as the key basis
	for climate policy decisions made by governments throughout
	the world. The IPCC states: "To determine whether current
	warming is unusual, it is essential to place it in the
	context of longer-term climate variability." The first
	IPCC report stated that "some of the global warming since
	1850 could be a recovery from the Little Ice Age rather
	than a direct result of human activities. So it is
	important to recognize the natural variations of climate
	are appreciable and will modulate any future changes
	induced by man." The second IPCC report stated that "data
	prior to 1400 are too sparse to allow the reliable estimate
	of global mean temperature" and show a graph of
	proxy-derived temperatures for Earth's Northern Hemisphere
	from 1400 onward." The third IPCC report stated that the
	latest proxy studies indicate "the conventional terms of
	'Little Ice Age' and 'Medieval Warm Period' appear to have
	limited utility in describing...global mean temperature
	change in the past centuries.`,
})

var advertisements = []string{
	"Skirts, blouses and accessories. Up to 45% off. Shop Now.",
	"Your future's looking up with our new student loan. Competitive interest rates. Multiple repayment options. No origination fee. Get started now.",
	"Shop non-traditional jewelry designs.",
	"Khakis for all seasons. All season tech.",
}

// StoryCount is the number of built-in stories.
var StoryCount = len(stories)

func collapse(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.Join(strings.Fields(s), " ")
	}
	return out
}

// Static serves a random sample of built-in stories and advertisements.
// It is safe for concurrent use.
type Static struct {
	count int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStatic returns a source that yields count stories per call. A nil rng
// uses a randomly seeded generator.
func NewStatic(count int, rng *rand.Rand) *Static {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Static{count: min(max(count, 0), len(stories)), rng: rng}
}

// News returns a shuffled sample of stories.
func (s *Static) News() []string {
	out := append([]string(nil), stories...)

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()

	return out[:s.count]
}

// Advertisement returns one advertisement.
func (s *Static) Advertisement() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return advertisements[s.rng.IntN(len(advertisements))]
}

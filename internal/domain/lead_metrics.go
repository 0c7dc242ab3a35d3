package domain

import (
	"math"
	"sort"
	"time"
)

// QualifiedStatus is the pipeline stage counted as a qualified lead.
const QualifiedStatus = "Kvalifisert"

const unknownLabel = "Unknown"

// LeadMetrics are the headline numbers shown on the dashboard.
type LeadMetrics struct {
	TotalLeads     int     `json:"totalLeads"`
	AvgKwp         float64 `json:"avgKwp"`
	AvgPpaPrice    float64 `json:"avgPpaPrice"`
	QualifiedLeads int     `json:"qualifiedLeads"`
}

// ComputeLeadMetrics averages capacity and price over all leads, counting absent values as zero.
func ComputeLeadMetrics(leads []Lead) LeadMetrics {
	metrics := LeadMetrics{TotalLeads: len(leads)}
	var kwpSum, ppaSum float64
	for _, lead := range leads {
		if lead.Kwp != nil {
			kwpSum += *lead.Kwp
		}
		if lead.PpaPrice != nil {
			ppaSum += *lead.PpaPrice
		}
		if lead.Status == QualifiedStatus {
			metrics.QualifiedLeads++
		}
	}
	denominator := float64(max(len(leads), 1))
	metrics.AvgKwp = round(kwpSum/denominator, 1)
	metrics.AvgPpaPrice = round(ppaSum/denominator, 2)
	return metrics
}

// CountBucket is one slice of a categorical chart.
type CountBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// KwpBucket is the average capacity for one status.
type KwpBucket struct {
	Name   string  `json:"name"`
	AvgKwp float64 `json:"avgKwp"`
}

// PricePoint is one PPA price observation.
type PricePoint struct {
	Date    string  `json:"date"`
	Price   float64 `json:"price"`
	Company string  `json:"company"`
}

// LeadCharts groups the dashboard chart series.
type LeadCharts struct {
	Sources  []CountBucket `json:"sourceData"`
	Statuses []CountBucket `json:"statusData"`
	Kwp      []KwpBucket   `json:"kwpData"`
	Prices   []PricePoint  `json:"ppaData"`
}

// ComputeLeadCharts builds chart series. Buckets keep first-seen order.
func ComputeLeadCharts(leads []Lead) LeadCharts {
	charts := LeadCharts{
		Sources:  countBy(leads, func(l Lead) string { return l.Source }),
		Statuses: countBy(leads, func(l Lead) string { return l.Status }),
		Kwp:      []KwpBucket{},
		Prices:   []PricePoint{},
	}

	type acc struct {
		total float64
		count int
	}
	var order []string
	byStatus := map[string]*acc{}
	for _, lead := range leads {
		if lead.Kwp == nil || *lead.Kwp == 0 {
			continue
		}
		status := labelOrUnknown(lead.Status)
		entry, ok := byStatus[status]
		if !ok {
			entry = &acc{}
			byStatus[status] = entry
			order = append(order, status)
		}
		entry.total += *lead.Kwp
		entry.count++
	}
	for _, status := range order {
		entry := byStatus[status]
		charts.Kwp = append(charts.Kwp, KwpBucket{Name: status, AvgKwp: round(entry.total/float64(entry.count), 1)})
	}

	for _, lead := range leads {
		if lead.PpaPrice == nil || *lead.PpaPrice == 0 {
			continue
		}
		charts.Prices = append(charts.Prices, PricePoint{Date: lead.Date, Price: *lead.PpaPrice, Company: lead.Company})
	}
	sort.SliceStable(charts.Prices, func(i, j int) bool {
		return parseDate(charts.Prices[i].Date).Before(parseDate(charts.Prices[j].Date))
	})

	return charts
}

func countBy(leads []Lead, key func(Lead) string) []CountBucket {
	buckets := []CountBucket{}
	index := map[string]int{}
	for _, lead := range leads {
		name := labelOrUnknown(key(lead))
		pos, ok := index[name]
		if !ok {
			pos = len(buckets)
			index[name] = pos
			buckets = append(buckets, CountBucket{Name: name})
		}
		buckets[pos].Value++
	}
	return buckets
}

func labelOrUnknown(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}

func parseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

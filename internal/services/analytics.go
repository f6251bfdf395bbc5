package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultTrendDays = 30
	MaxTrendDays     = 365

	trendDateLayout = "2006-01-02"
)

// ReviewPoint is the slice of a review the aggregations read.
type ReviewPoint struct {
	Rating     int
	Responded  bool
	ReviewDate time.Time
}

type DashboardStats struct {
	TotalReviews      int     `json:"totalReviews"`
	ReviewsLast30Days int     `json:"reviewsLast30Days"`
	ReviewsLast7Days  int     `json:"reviewsLast7Days"`
	AverageRating     float64 `json:"averageRating"`
	ResponseRate      int     `json:"responseRate"`
	ActiveCampaigns   int64   `json:"activeCampaigns"`
}

type TrendPoint struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"`
}

type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type CampaignPerformance struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	TotalSent      int     `json:"total_sent"`
	TotalCollected int     `json:"total_collected"`
	ConversionRate float64 `json:"conversion_rate"`
}

type MonthlyReport struct {
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	TotalReviews    int     `json:"total_reviews"`
	AvgRating       float64 `json:"avg_rating"`
	TotalResponses  int     `json:"total_responses"`
	PositiveReviews int     `json:"positive_reviews"`
	NegativeReviews int     `json:"negative_reviews"`
}

type ReportExport struct {
	Key    string        `json:"key"`
	URL    string        `json:"url"`
	Report MonthlyReport `json:"report"`
}

// ReportArchiver stores a serialized report and returns where it landed.
type ReportArchiver interface {
	Archive(ctx context.Context, key string, body []byte) (string, error)
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeDashboard summarizes a user's reviews. Both the rate and the average
// are 0 for a user without reviews.
func ComputeDashboard(points []ReviewPoint, activeCampaigns int64, now time.Time) DashboardStats {
	stats := DashboardStats{TotalReviews: len(points), ActiveCampaigns: activeCampaigns}
	if len(points) == 0 {
		return stats
	}

	since30 := now.AddDate(0, 0, -30)
	since7 := now.AddDate(0, 0, -7)
	ratingSum, responded := 0, 0
	for _, point := range points {
		ratingSum += point.Rating
		if point.Responded {
			responded++
		}
		if !point.ReviewDate.Before(since30) {
			stats.ReviewsLast30Days++
		}
		if !point.ReviewDate.Before(since7) {
			stats.ReviewsLast7Days++
		}
	}

	stats.AverageRating = round(float64(ratingSum)/float64(len(points)), 1)
	stats.ResponseRate = int(math.Round(float64(responded) / float64(len(points)) * 100))
	return stats
}

// ComputeTrends groups reviews by calendar day (UTC). Days without reviews are
// left out.
func ComputeTrends(points []ReviewPoint) []TrendPoint {
	type bucket struct{ count, sum int }
	buckets := map[string]*bucket{}
	for _, point := range points {
		day := point.ReviewDate.UTC().Format(trendDateLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.count++
		b.sum += point.Rating
	}

	trends := make([]TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		trends = append(trends, TrendPoint{
			Date:      day,
			Count:     b.count,
			AvgRating: round(float64(b.sum)/float64(b.count), 2),
		})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Date < trends[j].Date })
	return trends
}

// ComputeRatingDistribution counts reviews per rating, highest rating first.
// Ratings nobody gave are omitted.
func ComputeRatingDistribution(points []ReviewPoint) []RatingCount {
	var counts [6]int
	for _, point := range points {
		if point.Rating >= 1 && point.Rating <= 5 {
			counts[point.Rating]++
		}
	}

	distribution := make([]RatingCount, 0, 5)
	for rating := 5; rating >= 1; rating-- {
		if counts[rating] > 0 {
			distribution = append(distribution, RatingCount{Rating: rating, Count: counts[rating]})
		}
	}
	return distribution
}

func ConversionRate(totalSent, totalCollected int) float64 {
	if totalSent <= 0 {
		return 0
	}
	return round(float64(totalCollected)/float64(totalSent)*100, 2)
}

// ComputeMonthlyReport aggregates reviews already narrowed to one month.
// Positive means 4 or 5 stars and negative means 1 or 2, so 3-star reviews
// count toward neither.
func ComputeMonthlyReport(points []ReviewPoint, month, year int) MonthlyReport {
	report := MonthlyReport{Month: month, Year: year, TotalReviews: len(points)}
	ratingSum := 0
	for _, point := range points {
		ratingSum += point.Rating
		if point.Responded {
			report.TotalResponses++
		}
		switch {
		case point.Rating >= 4:
			report.PositiveReviews++
		case point.Rating <= 2:
			report.NegativeReviews++
		}
	}
	if len(points) > 0 {
		report.AvgRating = round(float64(ratingSum)/float64(len(points)), 2)
	}
	return report
}

type AnalyticsService struct {
	db       *gorm.DB
	archiver ReportArchiver
	now      func() time.Time
}

// NewAnalyticsService builds the read-side aggregator. archiver may be nil, in
// which case report export is unavailable.
func NewAnalyticsService(db *gorm.DB, archiver ReportArchiver) *AnalyticsService {
	return &AnalyticsService{db: db, archiver: archiver, now: time.Now}
}

func (s *AnalyticsService) reviewPoints(ctx context.Context, userID uint, scope func(*gorm.DB) *gorm.DB) ([]ReviewPoint, error) {
	points := make([]ReviewPoint, 0)
	query := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("rating", "responded", "review_date").
		Where("user_id = ?", userID)
	if scope != nil {
		query = scope(query)
	}
	if err := query.Scan(&points).Error; err != nil {
		return nil, dbError("load review points", err)
	}
	return points, nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint) (*DashboardStats, error) {
	points, err := s.reviewPoints(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	var active int64
	if err := s.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("user_id = ? AND status = ?", userID, models.CampaignStatusActive).
		Count(&active).Error; err != nil {
		return nil, dbError("count active campaigns", err)
	}

	stats := ComputeDashboard(points, active, s.now().UTC())
	return &stats, nil
}

// Trends covers the trailing window of days ending today, defaulting to
// DefaultTrendDays when days is 0.
func (s *AnalyticsService) Trends(ctx context.Context, userID uint, days int) ([]TrendPoint, error) {
	if days == 0 {
		days = DefaultTrendDays
	}
	if days < 1 || days > MaxTrendDays {
		return nil, invalid("period", fmt.Sprintf("period must be between 1 and %d days", MaxTrendDays))
	}

	since := startOfDay(s.now()).AddDate(0, 0, -days)
	points, err := s.reviewPoints(ctx, userID, func(db *gorm.DB) *gorm.DB {
		return db.Where("review_date >= ?", since)
	})
	if err != nil {
		return nil, err
	}
	return ComputeTrends(points), nil
}

func (s *AnalyticsService) RatingDistribution(ctx context.Context, userID uint) ([]RatingCount, error) {
	points, err := s.reviewPoints(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return ComputeRatingDistribution(points), nil
}

func (s *AnalyticsService) CampaignPerformance(ctx context.Context, userID uint) ([]CampaignPerformance, error) {
	var campaigns []models.Campaign
	if err := s.db.WithContext(ctx).
		Select("id", "name", "total_sent", "total_collected", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&campaigns).Error; err != nil {
		return nil, dbError("load campaign performance", err)
	}

	performance := make([]CampaignPerformance, 0, len(campaigns))
	for _, campaign := range campaigns {
		performance = append(performance, CampaignPerformance{
			ID:             campaign.ID,
			Name:           campaign.Name,
			TotalSent:      campaign.TotalSent,
			TotalCollected: campaign.TotalCollected,
			ConversionRate: ConversionRate(campaign.TotalSent, campaign.TotalCollected),
		})
	}
	return performance, nil
}

// MonthlyReport aggregates one calendar month (UTC). Zero month or year mean
// the current one.
func (s *AnalyticsService) MonthlyReport(ctx context.Context, userID uint, month, year int) (*MonthlyReport, error) {
	month, year, err := s.resolveMonth(month, year)
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	points, err := s.reviewPoints(ctx, userID, func(db *gorm.DB) *gorm.DB {
		return db.Where("review_date >= ? AND review_date < ?", start, end)
	})
	if err != nil {
		return nil, err
	}

	report := ComputeMonthlyReport(points, month, year)
	return &report, nil
}

// ExportMonthlyReport stores the month's report as JSON through the archiver.
func (s *AnalyticsService) ExportMonthlyReport(ctx context.Context, userID uint, month, year int) (*ReportExport, error) {
	if s.archiver == nil {
		return nil, invalid("export", "report export is not configured")
	}

	report, err := s.MonthlyReport(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode monthly report: %w", err)
	}

	key := fmt.Sprintf("reports/%d/%04d-%02d-%s.json", userID, report.Year, report.Month, uuid.NewString())
	url, err := s.archiver.Archive(ctx, key, body)
	if err != nil {
		return nil, fmt.Errorf("archive monthly report: %w", err)
	}
	return &ReportExport{Key: key, URL: url, Report: *report}, nil
}

func (s *AnalyticsService) resolveMonth(month, year int) (int, int, error) {
	now := s.now().UTC()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return 0, 0, invalid("month", "month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return 0, 0, invalid("year", "year is out of range")
	}
	return month, year, nil
}

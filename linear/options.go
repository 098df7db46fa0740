package linear

// Option configures a LinearRegression before fitting.
type Option func(*LinearRegression)

// WithFitIntercept controls whether an intercept term is estimated. When
// false the regression is forced through the origin and Intercept() reports
// zero.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

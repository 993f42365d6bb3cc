// Closed-form expected system times for the preemptive-resume M/G/1
// hierarchy. The learning loop substitutes these where a tier produced no
// observations (phi at or near 0 or 1), and the validation tests check the
// engine against them.

package sim

// PKFlowTime returns the Pollaczek–Khinchine mean system time for a single
// class M/G/1 queue with arrival rate lam, service rate mu, and dispersion
// k (second moment of service k/mu²). Under preemptive-resume with one
// class this equals the FCFS value.
func PKFlowTime(lam, mu, k float64) float64 {
	rho := lam / mu
	return 1/mu + lam*(k/(mu*mu))/(2*(1-rho))
}

// ExpectedWaitIncumbent returns the incumbent tier's mean system time: it
// sees the server alone, so only its own backlog delays it.
func ExpectedWaitIncumbent(muIn, kIn, rhoIn float64) float64 {
	return 1/muIn + kIn*rhoIn/(2*muIn*(1-rhoIn))
}

// ExpectedWaitPriority returns the priority tier's mean system time when a
// fraction phi of the commercial load joins it, under incumbent load rhoIn.
func ExpectedWaitPriority(mu, k, rho, muIn, kIn, rhoIn, phi float64) float64 {
	return 1/(mu*(1-rhoIn)) +
		(kIn*rhoIn/muIn+phi*k*rho/mu)/(2*(1-rhoIn)*(1-(rhoIn+phi*rho)))
}

// ExpectedWaitGeneral returns the general tier's mean system time beneath
// the incumbent and priority tiers.
func ExpectedWaitGeneral(mu, k, rho, muIn, kIn, rhoIn, phi float64) float64 {
	return 1/(mu*(1-(rhoIn+phi*rho))) +
		(kIn*rhoIn/muIn+k*rho/mu)/(2*(1-(rhoIn+phi*rho))*(1-(rhoIn+rho)))
}

// expectedWaits bundles the three tier expectations for a scenario at the
// given phi.
func expectedWaits(sc *Scenario, phi float64) (inc, pri, gen float64) {
	_, muIn := sc.incumbentRates()
	rhoIn := sc.RhoIn()
	rho := sc.Rho()
	kIn := incumbentK(sc)
	if muIn == 0 {
		// No incumbent tier: the rhoIn terms vanish; muIn only appears
		// multiplied by rhoIn, so any positive stand-in is exact.
		muIn, kIn, rhoIn = 1, 1, 0
	} else {
		inc = ExpectedWaitIncumbent(muIn, kIn, rhoIn)
	}
	pri = ExpectedWaitPriority(sc.Mu, sc.K, rho, muIn, kIn, rhoIn, phi)
	gen = ExpectedWaitGeneral(sc.Mu, sc.K, rho, muIn, kIn, rhoIn, phi)
	return inc, pri, gen
}

// incumbentK returns the incumbent dispersion; trace mode derives it from
// the empirical moments of the hold trace.
func incumbentK(sc *Scenario) float64 {
	if sc.Incumbent == IncumbentTrace {
		if len(sc.BreakdownHolds) == 0 {
			return 1
		}
		m := mean(sc.BreakdownHolds)
		var sq float64
		for _, v := range sc.BreakdownHolds {
			sq += v * v
		}
		m2 := sq / float64(len(sc.BreakdownHolds))
		return m2 / (m * m)
	}
	return sc.KIn
}

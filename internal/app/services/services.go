package services

// Services defined in this package:
// - AuthService: Handles authentication, registration and token refresh
// - SubjectService: Handles catalogue subject operations
// - OfferingService: Handles course offering lifecycle and occupancy reporting
// - EnrollmentService: Handles enrollment, withdrawal and grade recording

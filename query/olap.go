package query

var olap = []*Definition{
	{
		Label:   "Calculate the next payment amount for each patient",
		Columns: []string{"PatientID", "FirstName", "LastName", "PaymentDate", "TotalAmount", "NextPaymentAmount"},
		SQL: `SELECT p.PatientID, p.FirstName, p.LastName, b.PaymentDate, b.TotalAmount,
    LEAD(b.TotalAmount, 1) OVER (PARTITION BY p.PatientID ORDER BY b.PaymentDate) AS NextPaymentAmount
FROM Billing b
INNER JOIN Patient p USING (PatientID)
ORDER BY p.PatientID, b.PaymentDate`,
	},
	{
		Label:   "Calculate the previous payment amount for each patient",
		Columns: []string{"PatientID", "FirstName", "LastName", "PaymentDate", "TotalAmount", "PreviousPaymentAmount"},
		SQL: `SELECT p.PatientID, p.FirstName, p.LastName, b.PaymentDate, b.TotalAmount,
    LAG(b.TotalAmount, 1) OVER (PARTITION BY p.PatientID ORDER BY b.PaymentDate) AS PreviousPaymentAmount
FROM Billing b
INNER JOIN Patient p USING (PatientID)
ORDER BY p.PatientID, b.PaymentDate`,
	},
	{
		Label:   "Total number of appointments per department with a grand total",
		Columns: []string{"DepartmentName", "TotalAppointments"},
		SQL: `SELECT d.DepartmentName, COUNT(a.AppointmentID) AS TotalAppointments
FROM Appointment a
INNER JOIN Doctor doc ON a.DoctorID = doc.DoctorID
INNER JOIN Department d ON doc.DepartmentID = d.DepartmentID
GROUP BY d.DepartmentName WITH ROLLUP`,
	},
	{
		Label:   "Total billing per branch with subtotals",
		Columns: []string{"Branch_Name", "TotalBilling"},
		SQL: `SELECT hb.Branch_Name, SUM(b.TotalAmount) AS TotalBilling
FROM Billing b
INNER JOIN Hospital_Branch hb USING (Branch_ID)
GROUP BY hb.Branch_Name WITH ROLLUP`,
	},
	{
		Label:   "Total revenue per branch and payment method",
		Columns: []string{"Branch_Name", "PaymentMethod", "TotalRevenue"},
		SQL: `SELECT hb.Branch_Name, b.PaymentMethod, SUM(b.TotalAmount) AS TotalRevenue
FROM Billing b
INNER JOIN Hospital_Branch hb USING (Branch_ID)
GROUP BY hb.Branch_Name, b.PaymentMethod WITH ROLLUP`,
	},
	{
		Label:   "Total billing per payment method with subtotals",
		Columns: []string{"PaymentMethod", "TotalBilling"},
		SQL: `SELECT PaymentMethod, SUM(TotalAmount) AS TotalBilling
FROM Billing
GROUP BY PaymentMethod WITH ROLLUP`,
	},
	{
		Label:   "Total Billing for Each Patient (Cumulative Sum)",
		Columns: []string{"PatientID", "PaymentDate", "TotalAmount", "CumulativeTotalBilling"},
		SQL: `SELECT
    PatientID,
    PaymentDate,
    TotalAmount,
    SUM(TotalAmount) OVER (PARTITION BY PatientID ORDER BY PaymentDate) AS CumulativeTotalBilling
FROM Billing
ORDER BY PatientID, PaymentDate`,
	},
	{
		Label: "Rank Patients Based on Total Billing Amount in Quartiles",
		Columns: []string{
			"PatientID", "PatientFullName", "TotalBilling",
			"BillingNTile2", "BillingNTile3", "BillingNTile4", "BillingNTile5",
		},
		SQL: `SELECT
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientFullName,
    SUM(b.TotalAmount) AS TotalBilling,
    NTILE(2) OVER (ORDER BY SUM(b.TotalAmount) DESC) AS BillingNTile2,
    NTILE(3) OVER (ORDER BY SUM(b.TotalAmount) DESC) AS BillingNTile3,
    NTILE(4) OVER (ORDER BY SUM(b.TotalAmount) DESC) AS BillingNTile4,
    NTILE(5) OVER (ORDER BY SUM(b.TotalAmount) DESC) AS BillingNTile5
FROM Billing b
INNER JOIN Patient p USING (PatientID)
GROUP BY p.PatientID, PatientFullName
ORDER BY TotalBilling DESC`,
	},
	{
		Label:   "Running Total of Appointments by Doctor",
		Columns: []string{"DoctorID", "DoctorName", "AppointmentDate", "RunningTotalAppointments"},
		SQL: `SELECT
    doc.DoctorID,
    CONCAT(doc.FirstName, ' ', doc.LastName) AS DoctorName,
    a.AppointmentDate,
    COUNT(a.AppointmentID) OVER (
        PARTITION BY doc.DoctorID ORDER BY a.AppointmentDate
        ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
    ) AS RunningTotalAppointments
FROM Appointment a
INNER JOIN Doctor doc USING (DoctorID)
ORDER BY doc.DoctorID, a.AppointmentDate`,
	},
	{
		Label:   "Compare Ranking Methods for Billing",
		Columns: []string{"PatientID", "PatientName", "TotalBilling", "RankBilling", "DenseRankBilling"},
		SQL: `SELECT
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientName,
    SUM(b.TotalAmount) AS TotalBilling,
    RANK() OVER (ORDER BY SUM(b.TotalAmount) DESC) AS RankBilling,
    DENSE_RANK() OVER (ORDER BY SUM(b.TotalAmount) DESC) AS DenseRankBilling
FROM Patient p
INNER JOIN Billing b USING (PatientID)
GROUP BY p.PatientID, p.FirstName, p.LastName
ORDER BY RankBilling`,
	},
	{
		Label:   "Compare Ranking Methods for Appointment",
		Columns: []string{"DoctorID", "DoctorFullName", "TotalPatients", "DoctorRank", "DoctorDenseRank"},
		SQL: `SELECT
    doc.DoctorID,
    CONCAT(doc.FirstName, ' ', doc.LastName) AS DoctorFullName,
    COUNT(DISTINCT a.PatientID) AS TotalPatients,
    RANK() OVER (ORDER BY COUNT(DISTINCT a.PatientID) DESC) AS DoctorRank,
    DENSE_RANK() OVER (ORDER BY COUNT(DISTINCT a.PatientID) DESC) AS DoctorDenseRank
FROM Appointment a
INNER JOIN Doctor doc USING (DoctorID)
GROUP BY doc.DoctorID, DoctorFullName
ORDER BY DoctorRank`,
	},
	{
		Label: "Rank doctors by the number of patients they have attended",
		Columns: []string{
			"DoctorID", "DoctorName", "TotalPatientsAttended", "UniquePatientsTreated",
			"DoctorRank", "DenseDoctorRank",
		},
		SQL: `SELECT
    doc.DoctorID,
    CONCAT(doc.FirstName, ' ', doc.LastName) AS DoctorName,
    COUNT(mr.PatientID) AS TotalPatientsAttended,
    COUNT(DISTINCT mr.PatientID) AS UniquePatientsTreated,
    RANK() OVER (ORDER BY COUNT(mr.PatientID) DESC) AS DoctorRank,
    DENSE_RANK() OVER (ORDER BY COUNT(DISTINCT mr.PatientID) DESC) AS DenseDoctorRank
FROM Doctor doc
INNER JOIN MedicalRecord mr USING (DoctorID)
GROUP BY doc.DoctorID, doc.FirstName, doc.LastName
ORDER BY DoctorRank`,
	},
}

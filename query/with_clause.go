package query

var withClause = []*Definition{
	{
		Label:   "Total Revenue per Branch and Department",
		Columns: []string{"Branch_Name", "DepartmentName", "TotalRevenue"},
		SQL: `WITH DepartmentBilling AS (
    SELECT doc.DepartmentID, hb.Branch_ID, SUM(b.TotalAmount) AS TotalRevenue
    FROM Billing b
    INNER JOIN Appointment a ON b.PatientID = a.PatientID
    INNER JOIN Doctor doc ON a.DoctorID = doc.DoctorID
    INNER JOIN Hospital_Branch hb ON doc.Branch_ID = hb.Branch_ID
    GROUP BY doc.DepartmentID, hb.Branch_ID
)
SELECT hb.Branch_Name, d.DepartmentName, db.TotalRevenue
FROM DepartmentBilling db
INNER JOIN Department d ON db.DepartmentID = d.DepartmentID
INNER JOIN Hospital_Branch hb ON db.Branch_ID = hb.Branch_ID
ORDER BY hb.Branch_Name, d.DepartmentName`,
	},
	{
		Label:   "Doctors Who Treated More Patients Than the Average per Department",
		Columns: []string{"DoctorID", "DoctorName", "DepartmentName", "PatientsTreated"},
		SQL: `WITH DepartmentAverage AS (
    SELECT DepartmentID, AVG(PatientCount) AS AvgPatients
    FROM (
        SELECT doc.DoctorID, doc.DepartmentID, COUNT(DISTINCT mr.PatientID) AS PatientCount
        FROM MedicalRecord mr
        INNER JOIN Doctor doc ON mr.DoctorID = doc.DoctorID
        GROUP BY doc.DoctorID, doc.DepartmentID
    ) AS DoctorPatientCounts
    GROUP BY DepartmentID
)
SELECT
    doc.DoctorID,
    CONCAT(doc.FirstName, ' ', doc.LastName) AS DoctorName,
    d.DepartmentName,
    COUNT(DISTINCT mr.PatientID) AS PatientsTreated
FROM MedicalRecord mr
INNER JOIN Doctor doc ON mr.DoctorID = doc.DoctorID
INNER JOIN Department d ON doc.DepartmentID = d.DepartmentID
INNER JOIN DepartmentAverage da ON doc.DepartmentID = da.DepartmentID
GROUP BY doc.DoctorID, doc.FirstName, doc.LastName, d.DepartmentName, da.AvgPatients
HAVING COUNT(DISTINCT mr.PatientID) > da.AvgPatients
ORDER BY PatientsTreated DESC`,
	},
	{
		Label:   "List the Patients with the Longest Stay per Branch",
		Columns: []string{"Branch_Name", "PatientID", "PatientFullName", "LongestStay"},
		SQL: `WITH PatientStayLength AS (
    SELECT hs.PatientID, hs.Branch_ID, DATEDIFF(hs.DischargeDate, hs.AdmitDate) AS StayLength
    FROM HospitalStay hs
)
SELECT
    hb.Branch_Name,
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientFullName,
    MAX(psl.StayLength) AS LongestStay
FROM PatientStayLength psl
INNER JOIN Patient p ON psl.PatientID = p.PatientID
INNER JOIN Hospital_Branch hb ON psl.Branch_ID = hb.Branch_ID
GROUP BY hb.Branch_Name, p.PatientID, p.FirstName, p.LastName
ORDER BY hb.Branch_Name, LongestStay DESC`,
	},
	{
		Label:   "Total Number of Appointments per Patient Over the Last 6 Months",
		Columns: []string{"PatientID", "PatientFullName", "TotalAppointments"},
		SQL: `WITH RecentAppointments AS (
    SELECT a.PatientID, a.AppointmentDate
    FROM Appointment a
    WHERE a.AppointmentDate BETWEEN DATE_SUB(CURDATE(), INTERVAL 6 MONTH) AND CURDATE()
)
SELECT
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientFullName,
    COUNT(ra.AppointmentDate) AS TotalAppointments
FROM RecentAppointments ra
INNER JOIN Patient p ON ra.PatientID = p.PatientID
GROUP BY p.PatientID, p.FirstName, p.LastName
ORDER BY TotalAppointments DESC`,
	},
	{
		Label:   "List Nurses Who Have Assisted in More Stays Than the Average Nurse in Their Branch",
		Columns: []string{"NurseID", "NurseName", "Branch_Name", "StayCount"},
		SQL: `WITH NurseStayCounts AS (
    SELECT hs.AssignedNurseID, hs.Branch_ID, COUNT(hs.StayID) AS StayCount
    FROM HospitalStay hs
    GROUP BY hs.AssignedNurseID, hs.Branch_ID
),
BranchAverage AS (
    SELECT Branch_ID, AVG(StayCount) AS AvgStayCount
    FROM NurseStayCounts
    GROUP BY Branch_ID
)
SELECT
    n.NurseID,
    CONCAT(n.FirstName, ' ', n.LastName) AS NurseName,
    hb.Branch_Name,
    nsc.StayCount
FROM NurseStayCounts nsc
INNER JOIN Nurse n ON n.NurseID = nsc.AssignedNurseID
INNER JOIN Hospital_Branch hb ON nsc.Branch_ID = hb.Branch_ID
INNER JOIN BranchAverage ba ON nsc.Branch_ID = ba.Branch_ID
WHERE nsc.StayCount > ba.AvgStayCount
ORDER BY nsc.StayCount DESC`,
	},
}
